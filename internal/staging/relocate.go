package staging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wavout/wavout/pkg/events"
	"github.com/wavout/wavout/pkg/pathguard"
)

// ProbeFunc reads media metadata from a finished audio file.
type ProbeFunc func(path string) (sampleRate int, durationSeconds float64, err error)

// RelocateOptions control how an artifact is moved to its destination.
type RelocateOptions struct {
	// Overwrite permits replacing an existing non-empty destination file.
	Overwrite bool
	// SingleFile marks backends whose contract guarantees exactly one
	// artifact; more than one match is then an error instead of a
	// lexicographic pick.
	SingleFile bool
}

// Result describes a successfully staged output file.
type Result struct {
	FinalPath       string
	SampleRate      int
	DurationSeconds float64
	SizeBytes       int64
}

// Relocator moves backend-produced artifacts out of a scratch directory
// into a validated destination without clobbering or following symlinks.
type Relocator struct {
	emitter *events.Emitter
	probe   ProbeFunc
}

// NewRelocator creates a relocator. probe may be nil, in which case the
// result carries no media metadata.
func NewRelocator(emitter *events.Emitter, probe ProbeFunc) *Relocator {
	return &Relocator{emitter: emitter, probe: probe}
}

// Relocate finds the artifact matching namePattern inside scratch and
// moves it to dest. The move is the last side-effecting step: any failure
// before it leaves the destination untouched.
func (r *Relocator) Relocate(ctx context.Context, jobID string, scratch ScratchDir, namePattern string, dest pathguard.ValidatedPath, opts RelocateOptions) (*Result, error) {
	matches, err := filepath.Glob(filepath.Join(scratch.Path(), namePattern))
	if err != nil {
		return nil, fmt.Errorf("bad artifact pattern %q: %w", namePattern, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Lstat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}

	switch {
	case len(files) == 0:
		return nil, fmt.Errorf("%w: pattern %q in %s", ErrArtifactNotFound, namePattern, scratch.Path())
	case len(files) > 1 && opts.SingleFile:
		return nil, fmt.Errorf("%w: pattern %q matched %d files", ErrAmbiguousArtifact, namePattern, len(files))
	}
	// Glob returns matches in lexicographic order, so taking the first
	// one is the documented deterministic choice.
	src := files[0]

	// Re-run the symlink and root checks right before the move to narrow
	// the validation-to-use window.
	if err := dest.Recheck(); err != nil {
		return nil, err
	}
	destPath := dest.String()
	if info, err := os.Lstat(destPath); err == nil {
		if info.Size() > 0 && !opts.Overwrite {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, destPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if err := os.Rename(src, destPath); err != nil {
		// Rename fails across volumes; fall back to staged copy+delete.
		if copyErr := copyAcrossVolumes(src, destPath); copyErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrCrossVolumeMove, copyErr)
		}
	}

	res := &Result{FinalPath: destPath}
	if info, err := os.Stat(destPath); err == nil {
		res.SizeBytes = info.Size()
	}
	if r.probe != nil {
		rate, dur, err := r.probe(destPath)
		if err != nil {
			return nil, fmt.Errorf("probe relocated artifact: %w", err)
		}
		res.SampleRate = rate
		res.DurationSeconds = dur
	}

	_ = r.emitter.Emit(ctx, events.ArtifactRelocated, jobID, &events.ArtifactRelocatedData{
		Source:      src,
		Destination: destPath,
		SizeBytes:   res.SizeBytes,
	})
	return res, nil
}

// copyAcrossVolumes copies src next to dest and renames it into place so
// no partially written file ever appears at the destination path.
func copyAcrossVolumes(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	partial := dest + ".partial"
	out, err := os.OpenFile(partial, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(partial)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(partial)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return err
	}
	return os.Remove(src)
}
