package staging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wavout/wavout/pkg/pathguard"
)

func acquireScratch(t *testing.T) (*Workspace, ScratchDir) {
	t.Helper()
	w := NewWorkspace(t.TempDir(), nil)
	d, err := w.Acquire(context.Background(), "job-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Release(context.Background(), "job-test", d) })
	return w, d
}

func validated(t *testing.T, root, path string) pathguard.ValidatedPath {
	t.Helper()
	v, err := pathguard.Validate(path, []string{root})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestRelocateSingleArtifact(t *testing.T) {
	_, scratch := acquireScratch(t)
	if err := os.WriteFile(filepath.Join(scratch.Path(), "out_000.wav"), []byte("audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	dest := validated(t, root, filepath.Join(root, "final.wav"))

	r := NewRelocator(nil, nil)
	res, err := r.Relocate(context.Background(), "job-1", scratch, "out*.wav", dest, RelocateOptions{SingleFile: true})
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}

	got, err := os.ReadFile(res.FinalPath)
	if err != nil {
		t.Fatalf("read final file: %v", err)
	}
	if string(got) != "audio" {
		t.Errorf("final content = %q, want %q", got, "audio")
	}
	if _, err := os.Stat(filepath.Join(scratch.Path(), "out_000.wav")); !os.IsNotExist(err) {
		t.Error("artifact still present in scratch after move")
	}
	if res.SizeBytes != int64(len("audio")) {
		t.Errorf("size = %d, want %d", res.SizeBytes, len("audio"))
	}
}

func TestRelocateNoMatch(t *testing.T) {
	_, scratch := acquireScratch(t)
	root := t.TempDir()
	dest := validated(t, root, filepath.Join(root, "final.wav"))

	r := NewRelocator(nil, nil)
	_, err := r.Relocate(context.Background(), "job-1", scratch, "out*.wav", dest, RelocateOptions{})
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("error = %v, want ErrArtifactNotFound", err)
	}
}

func TestRelocateAmbiguousUnderSingleFileContract(t *testing.T) {
	_, scratch := acquireScratch(t)
	for _, name := range []string{"out_000.wav", "out_001.wav"} {
		if err := os.WriteFile(filepath.Join(scratch.Path(), name), []byte(name), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	root := t.TempDir()
	dest := validated(t, root, filepath.Join(root, "final.wav"))

	r := NewRelocator(nil, nil)
	_, err := r.Relocate(context.Background(), "job-1", scratch, "out*.wav", dest, RelocateOptions{SingleFile: true})
	if !errors.Is(err, ErrAmbiguousArtifact) {
		t.Errorf("error = %v, want ErrAmbiguousArtifact", err)
	}
	if _, err := os.Stat(dest.String()); !os.IsNotExist(err) {
		t.Error("destination was created despite ambiguous artifacts")
	}
}

func TestRelocateMultipleTakesLexicographicFirst(t *testing.T) {
	_, scratch := acquireScratch(t)
	for _, name := range []string{"out_001.wav", "out_000.wav"} {
		if err := os.WriteFile(filepath.Join(scratch.Path(), name), []byte(name), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	root := t.TempDir()
	dest := validated(t, root, filepath.Join(root, "final.wav"))

	r := NewRelocator(nil, nil)
	res, err := r.Relocate(context.Background(), "job-1", scratch, "out*.wav", dest, RelocateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(res.FinalPath)
	if string(got) != "out_000.wav" {
		t.Errorf("moved %q, want the lexicographically first artifact", got)
	}
}

func TestRelocateRefusesNonEmptyDestination(t *testing.T) {
	_, scratch := acquireScratch(t)
	if err := os.WriteFile(filepath.Join(scratch.Path(), "out.wav"), []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	destPath := filepath.Join(root, "final.wav")
	if err := os.WriteFile(destPath, []byte("precious"), 0o600); err != nil {
		t.Fatal(err)
	}
	dest := validated(t, root, destPath)

	r := NewRelocator(nil, nil)
	_, err := r.Relocate(context.Background(), "job-1", scratch, "out.wav", dest, RelocateOptions{})
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("error = %v, want ErrDestinationExists", err)
	}

	got, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "precious" {
		t.Errorf("destination changed to %q, want byte-for-byte unchanged", got)
	}
}

func TestRelocateOverwriteReplacesDestination(t *testing.T) {
	_, scratch := acquireScratch(t)
	if err := os.WriteFile(filepath.Join(scratch.Path(), "out.wav"), []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	destPath := filepath.Join(root, "final.wav")
	if err := os.WriteFile(destPath, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	dest := validated(t, root, destPath)

	r := NewRelocator(nil, nil)
	if _, err := r.Relocate(context.Background(), "job-1", scratch, "out.wav", dest, RelocateOptions{Overwrite: true}); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(destPath)
	if string(got) != "new" {
		t.Errorf("destination = %q, want %q", got, "new")
	}
}

func TestRelocateEmptyDestinationIsReplaceable(t *testing.T) {
	_, scratch := acquireScratch(t)
	if err := os.WriteFile(filepath.Join(scratch.Path(), "out.wav"), []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	destPath := filepath.Join(root, "final.wav")
	if err := os.WriteFile(destPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	dest := validated(t, root, destPath)

	r := NewRelocator(nil, nil)
	if _, err := r.Relocate(context.Background(), "job-1", scratch, "out.wav", dest, RelocateOptions{}); err != nil {
		t.Fatalf("Relocate over empty destination: %v", err)
	}
}

func TestRelocateRechecksSymlinkSwap(t *testing.T) {
	_, scratch := acquireScratch(t)
	if err := os.WriteFile(filepath.Join(scratch.Path(), "out.wav"), []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	destPath := filepath.Join(root, "final.wav")
	dest := validated(t, root, destPath)

	// Simulate a TOCTOU attack: the destination becomes a symlink after
	// validation but before the move.
	victim := filepath.Join(t.TempDir(), "victim")
	if err := os.WriteFile(victim, []byte("keep me"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(victim, destPath); err != nil {
		t.Fatal(err)
	}

	r := NewRelocator(nil, nil)
	_, err := r.Relocate(context.Background(), "job-1", scratch, "out.wav", dest, RelocateOptions{Overwrite: true})
	if !errors.Is(err, pathguard.ErrSymlinkRejected) {
		t.Fatalf("error = %v, want ErrSymlinkRejected", err)
	}
	got, _ := os.ReadFile(victim)
	if string(got) != "keep me" {
		t.Errorf("symlink target changed to %q", got)
	}
}

func TestRelocateCreatesMissingParents(t *testing.T) {
	_, scratch := acquireScratch(t)
	if err := os.WriteFile(filepath.Join(scratch.Path(), "out.wav"), []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	destPath := filepath.Join(root, "x", "y", "final.wav")
	dest := validated(t, root, destPath)

	r := NewRelocator(nil, nil)
	res, err := r.Relocate(context.Background(), "job-1", scratch, "out.wav", dest, RelocateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.FinalPath != destPath {
		t.Errorf("final path = %q, want %q", res.FinalPath, destPath)
	}
	if _, err := os.Stat(destPath); err != nil {
		t.Errorf("final file missing: %v", err)
	}
}

func TestCreateDestinationRefusesSymlink(t *testing.T) {
	root := t.TempDir()
	destPath := filepath.Join(root, "final.wav")
	dest := validated(t, root, destPath)

	if err := os.Symlink("/etc/passwd", destPath); err != nil {
		t.Fatal(err)
	}
	_, err := CreateDestination(dest, true)
	if !errors.Is(err, pathguard.ErrSymlinkRejected) {
		t.Errorf("error = %v, want ErrSymlinkRejected", err)
	}
}

func TestCreateDestinationNoClobber(t *testing.T) {
	root := t.TempDir()
	destPath := filepath.Join(root, "final.wav")
	if err := os.WriteFile(destPath, []byte("precious"), 0o600); err != nil {
		t.Fatal(err)
	}
	dest := validated(t, root, destPath)

	if _, err := CreateDestination(dest, false); !errors.Is(err, ErrDestinationExists) {
		t.Errorf("error = %v, want ErrDestinationExists", err)
	}

	f, err := CreateDestination(dest, true)
	if err != nil {
		t.Fatalf("CreateDestination(overwrite): %v", err)
	}
	f.Close()
}
