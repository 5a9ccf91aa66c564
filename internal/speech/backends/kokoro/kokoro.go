// Package kokoro adapts the Kokoro ONNX runner. The runner streams raw
// 16-bit mono PCM to stdout, so this backend renders in memory and needs
// no scratch directory.
package kokoro

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/wavout/wavout/internal/speech/engine"
	"github.com/wavout/wavout/internal/speech/registry"
)

const defaultSampleRate = 24000

func init() {
	registry.Samples.Register("kokoro", func(config map[string]string) (engine.SampleSynthesizer, error) {
		binaryPath := config["binary_path"]
		if binaryPath == "" {
			binaryPath = "kokoro-runner"
		}
		modelPath := config["model_path"]
		if modelPath == "" {
			modelPath = "kokoro-v1.0.onnx"
		}
		voicesPath := config["voices_path"]
		if voicesPath == "" {
			voicesPath = "voices-v1.0.bin"
		}
		sampleRate := defaultSampleRate
		if s := config["sample_rate"]; s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("kokoro: invalid sample_rate %q", s)
			}
			sampleRate = n
		}
		return NewKokoroTTS(binaryPath, modelPath, voicesPath, sampleRate)
	})
}

// KokoroTTS implements SampleSynthesizer using the Kokoro runner binary.
type KokoroTTS struct {
	binaryPath string
	modelPath  string
	voicesPath string
	sampleRate int
}

// NewKokoroTTS creates a Kokoro backend. It fails early when the model
// or voices file is missing, naming every absent file.
func NewKokoroTTS(binaryPath, modelPath, voicesPath string, sampleRate int) (*KokoroTTS, error) {
	var missing []string
	if _, err := os.Stat(modelPath); err != nil {
		missing = append(missing, "model file: "+modelPath)
	}
	if _, err := os.Stat(voicesPath); err != nil {
		missing = append(missing, "voices file: "+voicesPath)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("kokoro: required files are missing: %v", missing)
	}
	return &KokoroTTS{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		voicesPath: voicesPath,
		sampleRate: sampleRate,
	}, nil
}

// Synthesize generates speech audio from text.
func (k *KokoroTTS) Synthesize(ctx context.Context, text string, opts engine.Options) (*engine.Synthesis, error) {
	args := []string{
		"--model", k.modelPath,
		"--voices", k.voicesPath,
		"--output-raw",
	}
	if opts.Voice != "" {
		args = append(args, "--voice", opts.Voice)
	}
	if opts.Speed != 0 {
		args = append(args, "--speed", strconv.FormatFloat(opts.Speed, 'f', -1, 64))
	}
	if opts.Language != "" {
		args = append(args, "--lang", opts.Language)
	}

	cmd := exec.CommandContext(ctx, k.binaryPath, args...)
	cmd.Stdin = bytes.NewBufferString(text)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("kokoro TTS: %w: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("kokoro TTS: no audio generated")
	}

	return &engine.Synthesis{
		Samples:    stdout.Bytes(),
		SampleRate: k.sampleRate,
	}, nil
}

// Close releases TTS resources.
func (k *KokoroTTS) Close() error {
	return nil
}
