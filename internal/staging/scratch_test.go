package staging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wavout/wavout/pkg/events"
)

func TestWorkspaceAcquireUnique(t *testing.T) {
	base := t.TempDir()
	w := NewWorkspace(base, nil)

	a, err := w.Acquire(context.Background(), "job-a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	b, err := w.Acquire(context.Background(), "job-b")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if a.Path() == b.Path() {
		t.Errorf("two acquisitions returned the same path %q", a.Path())
	}
	for _, d := range []ScratchDir{a, b} {
		if !strings.HasPrefix(filepath.Base(d.Path()), "wavout-") {
			t.Errorf("scratch name %q missing prefix", d.Path())
		}
		info, err := os.Stat(d.Path())
		if err != nil {
			t.Fatalf("stat %q: %v", d.Path(), err)
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", d.Path())
		}
	}
}

func TestWorkspaceReleaseRemovesContents(t *testing.T) {
	w := NewWorkspace(t.TempDir(), nil)
	d, err := w.Acquire(context.Background(), "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d.Path(), "leftover.wav"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	w.Release(context.Background(), "job-1", d)

	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Errorf("scratch dir still exists after Release: %v", err)
	}
}

func TestWorkspaceReleaseZeroDirIsNoop(t *testing.T) {
	w := NewWorkspace(t.TempDir(), nil)
	w.Release(context.Background(), "job-1", ScratchDir{})
}

func TestWorkspaceEmitsLifecycleEvents(t *testing.T) {
	emitter := events.NewEmitter("staging-test", nil)
	ch := emitter.Subscribe("t", 8)
	defer emitter.Unsubscribe("t")

	w := NewWorkspace(t.TempDir(), emitter)
	d, err := w.Acquire(context.Background(), "job-1")
	if err != nil {
		t.Fatal(err)
	}
	w.Release(context.Background(), "job-1", d)

	want := []events.EventType{events.ScratchAcquired, events.ScratchReleased}
	for _, wt := range want {
		env := <-ch
		if env.Type != wt {
			t.Errorf("event = %q, want %q", env.Type, wt)
		}
	}
}
