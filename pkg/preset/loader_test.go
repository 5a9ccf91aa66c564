package preset

import (
	"os"
	"path/filepath"
	"testing"
)

func writePreset(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "narrator.yaml", `
name: narrator
voice: af_sarah
speed: 0.9
language: en-us
`)
	writePreset(t, dir, "excited.yml", `
name: excited
emotion: happy
emotion_strength: 0.8
exaggeration: 1.5
`)
	writePreset(t, dir, "README.md", "not a preset")

	l := NewLoader(dir)
	presets, err := l.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("loaded %d presets, want 2", len(presets))
	}

	p, ok := l.Get("narrator")
	if !ok {
		t.Fatal("narrator preset not found")
	}
	if p.Voice != "af_sarah" || p.Speed != 0.9 {
		t.Errorf("narrator = %+v", p)
	}
}

func TestLoadAllNameDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "calm.yaml", "voice: af_nicole\n")

	l := NewLoader(dir)
	if _, err := l.LoadAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Get("calm"); !ok {
		t.Errorf("preset not keyed by filename, have %v", l.Names())
	}
}

func TestLoadAllRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"speed too high", "name: bad\nspeed: 2.5\n"},
		{"speed too low", "name: bad\nspeed: 0.1\n"},
		{"pitch too high", "name: bad\npitch: 3.0\n"},
		{"emotion strength too high", "name: bad\nemotion_strength: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writePreset(t, dir, "bad.yaml", tt.content)
			if _, err := NewLoader(dir).LoadAll(); err == nil {
				t.Error("LoadAll accepted an out-of-range preset")
			}
		})
	}
}
