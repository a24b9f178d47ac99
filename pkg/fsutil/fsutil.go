// SPDX-License-Identifier: MPL-2.0

// Package fsutil implements the filesystem collaborators of a build run:
// project existence checks and output directory resets.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cloudtek/smartbuild/pkg/types"
)

const dirPerm = 0o755

// ErrNotDirectory is returned when a directory reset targets a regular file.
var ErrNotDirectory = errors.New("not a directory")

type (
	// FS is the filesystem seam used by the build. The zero-size OS value
	// talks to the real filesystem; tests swap in fakes.
	FS interface {
		FileExists(path types.FilesystemPath) bool
		EnsureCleanDirectory(path types.FilesystemPath) error
	}

	// OS implements FS on top of the os package.
	OS struct{}
)

// FileExists reports whether path exists and is not a directory.
func (OS) FileExists(path types.FilesystemPath) bool {
	return FileExists(path)
}

// EnsureCleanDirectory delegates to the package-level EnsureCleanDirectory.
func (OS) EnsureCleanDirectory(path types.FilesystemPath) error {
	return EnsureCleanDirectory(path)
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path types.FilesystemPath) bool {
	info, err := os.Stat(string(path))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureCleanDirectory leaves path as an existing, empty directory. A missing
// directory is created with its parents; an existing one has every entry
// removed. Calling it repeatedly on the same path is safe.
func EnsureCleanDirectory(path types.FilesystemPath) error {
	if err := path.Validate(); err != nil {
		return err
	}
	dir := string(path)

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("stat %s: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("reset %s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
