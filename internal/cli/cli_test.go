package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOptionsAppliesPresetUnderFlags(t *testing.T) {
	dir := t.TempDir()
	content := `
name: narrator
voice: af_sarah
speed: 0.9
emotion: calm
`
	if err := os.WriteFile(filepath.Join(dir, "narrator.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	f := Flags{Preset: "narrator", Voice: "af_alloy"}
	opts, err := f.Options(dir)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Voice != "af_alloy" {
		t.Errorf("explicit --voice lost to preset: %q", opts.Voice)
	}
	if opts.Speed != 0.9 || opts.Emotion != "calm" {
		t.Errorf("preset not applied: %+v", opts)
	}
}

func TestOptionsUnknownPreset(t *testing.T) {
	f := Flags{Preset: "nope"}
	_, err := f.Options(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown preset") {
		t.Errorf("error = %v, want unknown preset", err)
	}
}

func TestOptionsWithoutPresetSkipsLoader(t *testing.T) {
	// No preset requested: a missing preset directory must not matter.
	f := Flags{Voice: "af_sarah", Speed: 1.5}
	opts, err := f.Options(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Voice != "af_sarah" || opts.Speed != 1.5 {
		t.Errorf("opts = %+v", opts)
	}
}
