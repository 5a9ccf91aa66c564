package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/wavout/wavout/pkg/pathguard"
)

var (
	// ErrArtifactNotFound reports that no artifact matched the expected pattern.
	ErrArtifactNotFound = errors.New("no artifact matched the expected pattern")
	// ErrAmbiguousArtifact reports multiple matches under a single-file contract.
	ErrAmbiguousArtifact = errors.New("multiple artifacts matched a single-file pattern")
	// ErrDestinationExists reports a refusal to clobber existing output.
	ErrDestinationExists = errors.New("destination file already exists and is not empty")
	// ErrCrossVolumeMove reports a failed copy+delete fallback across volumes.
	ErrCrossVolumeMove = errors.New("cross-volume move failed")
)

// CreateDestination opens the validated destination for writing, creating
// missing parent directories under the matched root. It re-runs the
// symlink checks, refuses to follow a symlink at creation time, and
// refuses to clobber an existing non-empty file unless overwrite is set.
func CreateDestination(dest pathguard.ValidatedPath, overwrite bool) (*os.File, error) {
	if err := dest.Recheck(); err != nil {
		return nil, err
	}

	path := dest.String()
	exists := false
	if info, err := os.Lstat(path); err == nil {
		if info.Size() > 0 && !overwrite {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, path)
		}
		exists = true
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	// O_NOFOLLOW closes the remaining window between the Lstat recheck
	// and the open; O_EXCL guarantees exclusive creation of new files.
	flags := os.O_WRONLY | syscall.O_NOFOLLOW
	if exists {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open destination: %w", err)
	}
	return f, nil
}
