// Package fsutil provides workspace-scoped filesystem helpers: containment
// checked path resolution and atomic writes. Every path the orchestrator
// touches on behalf of a caller goes through ResolvePath first.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath resolves candidate against root and guarantees the result stays
// inside root. Relative candidates are joined to root; absolute candidates are
// accepted only when already under root. When the target exists, symlinks are
// resolved and the containment check is repeated so a link cannot smuggle the
// result outside the workspace.
func ResolvePath(root, candidate string) (string, error) {
	rootAbs, err := CanonicalRoot(root)
	if err != nil {
		return "", err
	}

	var joined string
	if filepath.IsAbs(candidate) {
		joined = filepath.Clean(candidate)
	} else {
		joined = filepath.Clean(filepath.Join(rootAbs, candidate))
	}

	if err := containedIn(rootAbs, joined); err != nil {
		return "", err
	}

	// If the target exists, chase symlinks and re-check. A not-yet-created
	// target is fine: callers that write create it next.
	if _, err := os.Lstat(joined); err == nil {
		resolved, err := filepath.EvalSymlinks(joined)
		if err != nil {
			return "", fmt.Errorf("resolve symlinks for %s: %w", joined, err)
		}
		if err := containedIn(rootAbs, resolved); err != nil {
			return "", fmt.Errorf("symlink escapes workspace: %s", candidate)
		}
		return resolved, nil
	}

	return joined, nil
}

// CanonicalRoot returns the absolute, symlink-resolved form of root. The root
// must exist.
func CanonicalRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root %s: %w", root, err)
	}
	return resolved, nil
}

func containedIn(root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("relative path for %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("path escapes workspace root: %s", path)
	}
	return nil
}

// AtomicWrite writes data to path through a temp file in the same directory,
// fsyncing the file and renaming it into place so a partial write is never
// visible. Missing parent directories are created.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ReadFileMax reads path, refusing to return more than maxBytes. Generated
// locustfiles are small; anything past the cap is a sign the caller pointed
// the introspector at the wrong file.
func ReadFileMax(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file %s exceeds %d byte limit", path, maxBytes)
	}
	return data, nil
}
