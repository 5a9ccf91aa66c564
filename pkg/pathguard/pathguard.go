// Package pathguard validates externally supplied output paths against
// symlink and directory-escape attacks before anything is written to them.
package pathguard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrSymlinkRejected reports that the output path itself is a symbolic link.
	ErrSymlinkRejected = errors.New("output path is a symbolic link")
	// ErrOutsideAllowedRoot reports that the resolved path escapes every allowed root.
	ErrOutsideAllowedRoot = errors.New("output path is outside every allowed root")
	// ErrSymlinkInPath reports a symbolic link between the matched root and the target.
	ErrSymlinkInPath = errors.New("output path ancestry contains a symbolic link")
	// ErrNoAllowedRoots reports that validation was attempted with an empty root set.
	ErrNoAllowedRoots = errors.New("no allowed roots configured")
)

// PathError wraps a validation failure with the offending path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid output path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// ValidatedPath is an absolute path whose existing ancestors were
// symlink-resolved and which was proven to sit under one allowed root.
// It is only produced by Validate and is valid for a single job.
type ValidatedPath struct {
	path string
	root string
}

// String returns the canonical absolute path.
func (v ValidatedPath) String() string { return v.path }

// Root returns the resolved allowed root the path was matched against.
func (v ValidatedPath) Root() string { return v.root }

// IsZero reports whether v was produced by Validate.
func (v ValidatedPath) IsZero() bool { return v.path == "" }

// Validate checks rawPath against the allowed roots and returns its
// canonical form. The final component need not exist yet; every existing
// ancestor is resolved through symlinks exactly once. Validation is
// read-only and is not safe against concurrent mutation of the path's
// ancestry between validation and use; callers must Recheck before the
// final write and create files with O_NOFOLLOW.
func Validate(rawPath string, allowedRoots []string) (ValidatedPath, error) {
	if strings.TrimSpace(rawPath) == "" {
		return ValidatedPath{}, &PathError{Path: rawPath, Err: errors.New("empty path")}
	}
	if len(allowedRoots) == 0 {
		return ValidatedPath{}, &PathError{Path: rawPath, Err: ErrNoAllowedRoots}
	}

	// The requested path itself must not be a symlink, dangling or not.
	if info, err := os.Lstat(rawPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return ValidatedPath{}, &PathError{Path: rawPath, Err: ErrSymlinkRejected}
	}

	abs, err := filepath.Abs(rawPath)
	if err != nil {
		return ValidatedPath{}, &PathError{Path: rawPath, Err: err}
	}
	canon, err := resolveExisting(abs)
	if err != nil {
		return ValidatedPath{}, &PathError{Path: rawPath, Err: err}
	}

	root, ok := matchRoot(canon, allowedRoots)
	if !ok {
		return ValidatedPath{}, &PathError{Path: rawPath, Err: ErrOutsideAllowedRoot}
	}

	if err := checkAncestry(root, canon); err != nil {
		return ValidatedPath{}, &PathError{Path: rawPath, Err: err}
	}

	return ValidatedPath{path: canon, root: root}, nil
}

// Recheck re-runs the symlink checks on an already validated path. It is
// meant to be called immediately before the final write to shrink the
// window between validation and use.
func (v ValidatedPath) Recheck() error {
	if v.IsZero() {
		return &PathError{Path: "", Err: errors.New("path was never validated")}
	}
	if info, err := os.Lstat(v.path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return &PathError{Path: v.path, Err: ErrSymlinkRejected}
	}
	if err := checkAncestry(v.root, v.path); err != nil {
		return &PathError{Path: v.path, Err: err}
	}
	return nil
}

// resolveExisting canonicalizes path by resolving symlinks on its longest
// existing ancestor and re-attaching the components that do not exist yet.
func resolveExisting(path string) (string, error) {
	var suffix []string
	cur := filepath.Clean(path)
	for {
		_, err := os.Lstat(cur)
		if err == nil {
			resolved, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return "", err
			}
			return filepath.Join(append([]string{resolved}, suffix...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			// Hit the filesystem root without finding an existing entry.
			return filepath.Join(append([]string{cur}, suffix...)...), nil
		}
		suffix = append([]string{filepath.Base(cur)}, suffix...)
		cur = parent
	}
}

// matchRoot returns the first allowed root containing path. Roots are
// resolved exactly once here; roots that do not exist are skipped.
// Containment is segment-wise, so /tmp/foo never matches root /tmp/foobar.
func matchRoot(path string, allowedRoots []string) (string, bool) {
	for _, raw := range allowedRoots {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		abs, err := filepath.Abs(raw)
		if err != nil {
			continue
		}
		root, err := filepath.EvalSymlinks(abs)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel == "." {
			return root, true
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if filepath.IsAbs(rel) {
			continue
		}
		return root, true
	}
	return "", false
}

// checkAncestry walks every intermediate component between root and path
// and rejects any existing component that is a symlink. This defends
// against a directory being swapped for a symlink after root resolution.
func checkAncestry(root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return nil
	}
	parts := strings.Split(rel, string(filepath.Separator))
	cur := root
	for _, part := range parts[:len(parts)-1] {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Nothing beyond this point exists yet.
				return nil
			}
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return ErrSymlinkInPath
		}
	}
	return nil
}
