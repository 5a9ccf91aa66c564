// Package cli carries the flag surface, wiring, and run loop shared by
// the speech generation front-ends. Each front-end binary differs only
// in its backend name and the passthrough flags it exposes.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/wavout/wavout/config"
	"github.com/wavout/wavout/internal/device"
	"github.com/wavout/wavout/internal/job"
	"github.com/wavout/wavout/internal/speech/engine"
	"github.com/wavout/wavout/internal/speech/registry"
	"github.com/wavout/wavout/internal/staging"
	"github.com/wavout/wavout/pkg/events"
	"github.com/wavout/wavout/pkg/preset"
)

// Flags holds the parsed command-line surface. Zero values mean "not
// set" and defer to presets and configuration.
type Flags struct {
	Text      string
	Output    string
	Voice     string
	Speed     float64
	Overwrite bool
	Preset    string
	// KeepScratch preserves a failed job's scratch directory for
	// inspection.
	KeepScratch bool
	// AllowRoots overrides the configured allowed output roots.
	AllowRoots []string

	// Passthrough prosody parameters; each front-end exposes the subset
	// its runner understands.
	Pitch           float64
	Emotion         string
	EmotionStrength float64
	Exaggeration    float64
	CFGWeight       float64
	Language        string

	// Model file overrides for backends that load local models.
	Model  string
	Voices string
}

// BindCommon registers the flags every front-end shares.
func BindCommon(cmd *cobra.Command, f *Flags) {
	cmd.Flags().StringVar(&f.Text, "text", "", "text to convert to speech")
	cmd.Flags().StringVar(&f.Output, "output", "", "output WAV file path")
	cmd.Flags().StringVar(&f.Voice, "voice", "", "voice name")
	cmd.Flags().Float64Var(&f.Speed, "speed", 0, "speech speed (0.5-2.0)")
	cmd.Flags().BoolVar(&f.Overwrite, "overwrite", false, "replace the output file if it already exists")
	cmd.Flags().StringVar(&f.Preset, "preset", "", "named voice preset to apply")
	cmd.Flags().StringArrayVar(&f.AllowRoots, "allow-root", nil, "directory output may be written under (repeatable, overrides ALLOWED_OUTPUT_ROOTS)")
	cmd.Flags().BoolVar(&f.KeepScratch, "keep-scratch", false, "keep the scratch directory of a failed job for inspection")
	cobra.CheckErr(cmd.Flags().MarkHidden("keep-scratch"))

	cobra.CheckErr(cmd.MarkFlagRequired("text"))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))
}

// Options assembles engine options from the flag values, applying the
// named preset underneath any explicitly set flags.
func (f *Flags) Options(presetDir string) (engine.Options, error) {
	opts := engine.Options{
		Voice:           f.Voice,
		Speed:           f.Speed,
		Pitch:           f.Pitch,
		Emotion:         f.Emotion,
		EmotionStrength: f.EmotionStrength,
		Exaggeration:    f.Exaggeration,
		CFGWeight:       f.CFGWeight,
		Language:        f.Language,
	}
	if f.Preset == "" {
		return opts, nil
	}

	loader := preset.NewLoader(presetDir)
	if _, err := loader.LoadAll(); err != nil {
		return opts, err
	}
	p, ok := loader.Get(f.Preset)
	if !ok {
		return opts, fmt.Errorf("unknown preset %q (have %s)", f.Preset, strings.Join(loader.Names(), ", "))
	}
	applyPreset(p, &opts)
	return opts, nil
}

// applyPreset fills the unset fields of opts from the preset. Fields
// already set by an explicit flag are left alone.
func applyPreset(p *preset.Preset, opts *engine.Options) {
	if opts.Voice == "" {
		opts.Voice = p.Voice
	}
	if opts.Speed == 0 {
		opts.Speed = p.Speed
	}
	if opts.Pitch == 0 {
		opts.Pitch = p.Pitch
	}
	if opts.Emotion == "" {
		opts.Emotion = p.Emotion
	}
	if opts.EmotionStrength == 0 {
		opts.EmotionStrength = p.EmotionStrength
	}
	if opts.Exaggeration == 0 {
		opts.Exaggeration = p.Exaggeration
	}
	if opts.CFGWeight == 0 {
		opts.CFGWeight = p.CFGWeight
	}
	if opts.Language == "" {
		opts.Language = p.Language
	}
}

// NewLogger builds the process logger at the configured level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl}))
}

// Run wires and executes one generation for the named backend. The
// backend's shape (in-memory or file-producing) is resolved from the
// registries it registered itself in.
func Run(cmd *cobra.Command, cfg *config.Config, backendName string, f *Flags) error {
	ctx := cmd.Context()

	logger := NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	emitter := events.NewEmitter(backendName+"-tts", logger)

	opts, err := f.Options(cfg.PresetDir)
	if err != nil {
		return err
	}
	if backendName == "kokoro" {
		if opts.Voice == "" {
			opts.Voice = cfg.KokoroDefaultVoice
		}
		if opts.Language == "" {
			opts.Language = cfg.KokoroDefaultLang
		}
	}

	backendConfig := map[string]string{
		"binary_path": cfg.BinaryPath(backendName),
	}
	if f.Model != "" {
		backendConfig["model_path"] = f.Model
	} else if backendName == "kokoro" {
		backendConfig["model_path"] = cfg.KokoroModelPath
	}
	if f.Voices != "" {
		backendConfig["voices_path"] = f.Voices
	} else if backendName == "kokoro" {
		backendConfig["voices_path"] = cfg.KokoroVoicesPath
	}

	jobCfg := job.Config{
		BackendName: backendName,
		Probe: device.SystemProbe{
			MLXRunner: cfg.MLXBinaryPath,
			CPURunner: cfg.BinaryPath(backendName),
		},
		Workspace: staging.NewWorkspace(cfg.ScratchBase, emitter),
		Emitter:   emitter,
		Logger:    logger,
	}
	switch {
	case registry.Samples.Has(backendName):
		sampler, err := registry.Samples.Create(backendName, backendConfig)
		if err != nil {
			return err
		}
		defer sampler.Close()
		jobCfg.Sampler = sampler
	case registry.Files.Has(backendName):
		filer, err := registry.Files.Create(backendName, backendConfig)
		if err != nil {
			return err
		}
		defer filer.Close()
		jobCfg.Filer = filer
	default:
		return fmt.Errorf("unknown backend %q", backendName)
	}

	roots := cfg.AllowedOutputRoots
	if len(f.AllowRoots) > 0 {
		roots = f.AllowRoots
	}

	j, err := job.New(jobCfg)
	if err != nil {
		return err
	}
	res, err := j.Run(ctx, job.Request{
		Text:                 f.Text,
		OutputPath:           f.Output,
		AllowedRoots:         roots,
		Overwrite:            f.Overwrite,
		KeepScratchOnFailure: f.KeepScratch,
		Options:              opts,
	})
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "audio saved",
		slog.String("path", res.FinalPath),
		slog.String("device", res.Device),
		slog.Int("sample_rate_hz", res.SampleRate),
		slog.Float64("duration_s", res.DurationSeconds))
	fmt.Fprintf(cmd.OutOrStdout(), "Success! Audio saved to: %s\n", res.FinalPath)
	if res.SampleRate > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Duration: %.2fs, Sample rate: %dHz\n", res.DurationSeconds, res.SampleRate)
	}
	return nil
}
