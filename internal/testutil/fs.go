// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"slices"
	"sync"

	"github.com/cloudtek/smartbuild/pkg/types"
)

// FS is an in-memory fsutil.FS. FileExists answers from the paths given to
// NewFS; EnsureCleanDirectory only records the call.
type FS struct {
	mu       sync.Mutex
	existing map[types.FilesystemPath]bool
	cleaned  []types.FilesystemPath
	// CleanErr is returned by every EnsureCleanDirectory call when set.
	CleanErr error
}

// NewFS returns an FS in which exactly the given files exist.
func NewFS(existing ...types.FilesystemPath) *FS {
	fs := &FS{existing: make(map[types.FilesystemPath]bool, len(existing))}
	for _, p := range existing {
		fs.existing[p] = true
	}
	return fs
}

// FileExists implements fsutil.FS.
func (f *FS) FileExists(path types.FilesystemPath) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[path]
}

// EnsureCleanDirectory implements fsutil.FS.
func (f *FS) EnsureCleanDirectory(path types.FilesystemPath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, path)
	return f.CleanErr
}

// Cleaned returns the directories passed to EnsureCleanDirectory in call order.
func (f *FS) Cleaned() []types.FilesystemPath {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.cleaned)
}
