// Package staging contains the output-staging subsystem: job-private
// scratch directories, guarded destination creation, and relocation of
// backend-produced artifacts into validated destinations.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pitabwire/util"
	"github.com/rs/xid"

	"github.com/wavout/wavout/pkg/events"
)

// Workspace hands out job-private scratch directories under a single
// trusted base temporary directory.
type Workspace struct {
	base    string
	emitter *events.Emitter
}

// NewWorkspace creates a workspace rooted at base. An empty base falls
// back to the host's standard temp directory.
func NewWorkspace(base string, emitter *events.Emitter) *Workspace {
	if base == "" {
		base = os.TempDir()
	}
	return &Workspace{base: base, emitter: emitter}
}

// ScratchDir is an exclusively owned, uniquely named directory created
// for one job. It sandboxes backends that write files wherever they want.
type ScratchDir struct {
	path string
}

// Path returns the absolute path of the scratch directory.
func (d ScratchDir) Path() string { return d.path }

// IsZero reports whether the scratch dir was never acquired.
func (d ScratchDir) IsZero() bool { return d.path == "" }

// Acquire creates a fresh scratch directory. It never reuses an existing
// directory: the xid-based name is collision resistant and Mkdir fails
// rather than adopting a directory someone else created.
func (w *Workspace) Acquire(ctx context.Context, jobID string) (ScratchDir, error) {
	path := filepath.Join(w.base, "wavout-"+xid.New().String())
	if err := os.Mkdir(path, 0o700); err != nil {
		return ScratchDir{}, fmt.Errorf("create scratch dir: %w", err)
	}
	_ = w.emitter.Emit(ctx, events.ScratchAcquired, jobID, &events.ScratchData{Path: path})
	return ScratchDir{path: path}, nil
}

// Release recursively removes the scratch directory. A removal failure
// does not affect the correctness of the finished job, so it is reported
// through the event emitter and the log for operators instead of being
// escalated.
func (w *Workspace) Release(ctx context.Context, jobID string, d ScratchDir) {
	if d.IsZero() {
		return
	}
	if err := os.RemoveAll(d.path); err != nil {
		util.Log(ctx).WithError(err).Error("scratch dir removal failed; disk needs manual reclaim")
		_ = w.emitter.Emit(ctx, events.ScratchReleaseFailed, jobID, &events.ScratchData{
			Path:  d.path,
			Error: err.Error(),
		})
		return
	}
	_ = w.emitter.Emit(ctx, events.ScratchReleased, jobID, &events.ScratchData{Path: d.path})
}
