// Package coqui adapts the Coqui TTS runner, a file-shape backend with
// prosody controls passed through opaquely.
package coqui

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/wavout/wavout/internal/speech/engine"
	"github.com/wavout/wavout/internal/speech/registry"
)

func init() {
	registry.Files.Register("coqui", func(config map[string]string) (engine.FileSynthesizer, error) {
		binaryPath := config["binary_path"]
		if binaryPath == "" {
			binaryPath = "coqui-runner"
		}
		return NewCoquiTTS(binaryPath), nil
	})
}

// CoquiTTS implements FileSynthesizer using the Coqui runner binary.
type CoquiTTS struct {
	binaryPath string
}

// NewCoquiTTS creates a Coqui backend.
func NewCoquiTTS(binaryPath string) *CoquiTTS {
	return &CoquiTTS{binaryPath: binaryPath}
}

// SynthesizeToDir renders speech into dir and returns the glob pattern
// its artifacts match.
func (c *CoquiTTS) SynthesizeToDir(ctx context.Context, text string, opts engine.Options, dir string) (string, error) {
	args := []string{
		"--text", text,
		"--output", filepath.Join(dir, "tts_output.wav"),
	}
	if opts.Voice != "" {
		args = append(args, "--voice", opts.Voice)
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
	if opts.EmotionStrength != 0 {
		args = append(args, "--emotion_strength", strconv.FormatFloat(opts.EmotionStrength, 'f', -1, 64))
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("coqui TTS: %w: %s", err, stderr.String())
	}

	return "tts_output*.wav", nil
}

// Close releases TTS resources.
func (c *CoquiTTS) Close() error {
	return nil
}
