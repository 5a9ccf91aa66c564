// Package config holds the environment-driven settings shared by the
// command-line front-ends.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings common to every front-end. Each field has an
// environment variable and a usable default so the tools run without a
// dotenv file.
type Config struct {
	// AllowedOutputRoots are the directories output files may land in.
	// Empty means the host temp directory only.
	AllowedOutputRoots []string `envSeparator:":"                  env:"ALLOWED_OUTPUT_ROOTS"`
	// ScratchBase hosts the per-job scratch directories.
	ScratchBase string `envDefault:""                              env:"SCRATCH_BASE"`
	// PresetDir holds YAML voice preset files.
	PresetDir string `envDefault:"./presets"                       env:"PRESET_DIR"`

	KokoroBinaryPath     string `envDefault:"kokoro-runner"        env:"KOKORO_BINARY_PATH"`
	KokoroModelPath      string `envDefault:"kokoro-v1.0.onnx"     env:"KOKORO_MODEL_PATH"`
	KokoroVoicesPath     string `envDefault:"voices-v1.0.bin"      env:"KOKORO_VOICES_PATH"`
	KokoroDefaultVoice   string `envDefault:"af_sarah"             env:"KOKORO_DEFAULT_VOICE"`
	KokoroDefaultLang    string `envDefault:"en-us"                env:"KOKORO_DEFAULT_LANG"`
	ChatterboxBinaryPath string `envDefault:"chatterbox-runner"    env:"CHATTERBOX_BINARY_PATH"`
	CoquiBinaryPath      string `envDefault:"coqui-runner"         env:"COQUI_BINARY_PATH"`
	// MLXBinaryPath is the MLX-enabled runner, present only on hosts
	// that installed the Apple Silicon stack.
	MLXBinaryPath string `envDefault:""                            env:"MLX_BINARY_PATH"`

	LogLevel string `envDefault:"info"                             env:"LOG_LEVEL"`
}

// BinaryPath returns the runner binary configured for the named backend.
func (c *Config) BinaryPath(backend string) string {
	switch backend {
	case "kokoro":
		return c.KokoroBinaryPath
	case "chatterbox":
		return c.ChatterboxBinaryPath
	case "coqui":
		return c.CoquiBinaryPath
	}
	return backend + "-runner"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env file is the normal case, not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if len(cfg.AllowedOutputRoots) == 0 {
		cfg.AllowedOutputRoots = []string{os.TempDir()}
	}
	return cfg, nil
}
