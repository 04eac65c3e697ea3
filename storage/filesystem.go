// Package storage writes materialized resource files. Paths handed to a sink
// are slash separated and relative to the sink's root.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that would leave the sink's root.
var ErrOutsideRoot = errors.New("path escapes the output root")

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Filesystem writes below a local directory.
type Filesystem struct {
	root string
}

// NewFilesystem creates a sink rooted at root. Nothing is created until the
// first EnsureDir or WriteFile.
func NewFilesystem(root string) *Filesystem {
	return &Filesystem{root: root}
}

// Location returns the on-disk path for rel.
func (f *Filesystem) Location(rel string) string {
	return filepath.Join(f.root, filepath.FromSlash(rel))
}

// checkRel accepts only clean, slash separated paths below the root.
func checkRel(rel string) error {
	if !fs.ValidPath(rel) || rel == "." || strings.Contains(rel, `\`) {
		return fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return nil
}

// EnsureDir creates rel and any missing parents. Existing directories are fine.
func (f *Filesystem) EnsureDir(_ context.Context, rel string) error {
	if err := checkRel(rel); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Location(rel), dirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// WriteFile replaces rel with data. The content goes to a temporary file in
// the same directory first, so a failed write leaves the old file intact.
func (f *Filesystem) WriteFile(_ context.Context, rel string, data []byte) error {
	if err := checkRel(rel); err != nil {
		return err
	}
	target := f.Location(rel)

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return cause
	}

	if _, err = tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write %s: %w", target, err))
	}
	if err = tmp.Chmod(filePerm); err != nil {
		return cleanup(fmt.Errorf("chmod %s: %w", target, err))
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", target, err)
	}

	if err = os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

// Close is a no-op.
func (f *Filesystem) Close() error {
	return nil
}
