// Package chatterbox adapts the Chatterbox runner. The runner writes its
// own WAV file, so this backend renders into a caller-provided directory
// and lets the relocation layer collect the artifact.
package chatterbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/xid"

	"github.com/wavout/wavout/internal/speech/engine"
	"github.com/wavout/wavout/internal/speech/registry"
)

func init() {
	registry.Files.Register("chatterbox", func(config map[string]string) (engine.FileSynthesizer, error) {
		binaryPath := config["binary_path"]
		if binaryPath == "" {
			binaryPath = "chatterbox-runner"
		}
		return NewChatterboxTTS(binaryPath), nil
	})
}

// ChatterboxTTS implements FileSynthesizer using the Chatterbox runner
// binary.
type ChatterboxTTS struct {
	binaryPath string
}

// NewChatterboxTTS creates a Chatterbox backend.
func NewChatterboxTTS(binaryPath string) *ChatterboxTTS {
	return &ChatterboxTTS{binaryPath: binaryPath}
}

// SynthesizeToDir renders speech into dir and returns the glob pattern
// its artifacts match. The execution device is passed explicitly; the
// runner never re-detects hardware on its own.
func (c *ChatterboxTTS) SynthesizeToDir(ctx context.Context, text string, opts engine.Options, dir string) (string, error) {
	out := filepath.Join(dir, "chatterbox_"+xid.New().String()+".wav")

	args := []string{
		"--text", text,
		"--output", out,
	}
	if opts.Voice != "" {
		args = append(args, "--voice", opts.Voice)
	}
	if opts.Device != "" {
		args = append(args, "--device", opts.Device)
	}
	if opts.Speed != 0 {
		args = append(args, "--speed", strconv.FormatFloat(opts.Speed, 'f', -1, 64))
	}
	if opts.Pitch != 0 {
		args = append(args, "--pitch", strconv.FormatFloat(opts.Pitch, 'f', -1, 64))
	}
	if opts.Emotion != "" {
		args = append(args, "--emotion", opts.Emotion)
	}
	if opts.Exaggeration != 0 {
		args = append(args, "--exaggeration", strconv.FormatFloat(opts.Exaggeration, 'f', -1, 64))
	}
	if opts.CFGWeight != 0 {
		args = append(args, "--cfg_weight", strconv.FormatFloat(opts.CFGWeight, 'f', -1, 64))
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("chatterbox TTS: %w: %s", err, stderr.String())
	}

	return "chatterbox_*.wav", nil
}

// Close releases TTS resources.
func (c *ChatterboxTTS) Close() error {
	return nil
}
