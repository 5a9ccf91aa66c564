// Package engine defines the contracts backends implement. Backends come
// in two shapes: those that hand back raw samples in memory, and those
// whose runners insist on writing files themselves.
package engine

import "context"

// Options carries per-request synthesis parameters. Backends ignore the
// fields they do not understand.
type Options struct {
	Voice            string
	Speed            float64
	Pitch            float64
	Emotion          string
	EmotionStrength  float64
	Exaggeration     float64
	CFGWeight        float64
	Language         string
	// Device is the execution backend name ("mlx", "cuda", "mps", "cpu")
	// passed through to runners that accept one.
	Device string
}

// Synthesis is an in-memory rendering: 16-bit little-endian mono PCM.
type Synthesis struct {
	Samples    []byte
	SampleRate int
}

// SampleSynthesizer renders speech into memory. Its output needs no
// scratch directory; the caller encodes and writes it directly.
type SampleSynthesizer interface {
	Synthesize(ctx context.Context, text string, opts Options) (*Synthesis, error)
	Close() error
}

// FileSynthesizer renders speech into files inside dir. It returns the
// glob pattern its artifacts match so the caller can collect them; it
// never writes outside dir.
type FileSynthesizer interface {
	SynthesizeToDir(ctx context.Context, text string, opts Options, dir string) (pattern string, err error)
	Close() error
}
