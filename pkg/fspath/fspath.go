// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath that accept and
// return types.FilesystemPath.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/cloudtek/smartbuild/pkg/types"
)

// JoinStr joins a typed base path with raw string segments such as module
// or artifact names taken from the manifest.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Abs wraps filepath.Abs.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Ext returns the file name extension of p without the leading dot.
func Ext(p types.FilesystemPath) string {
	ext := filepath.Ext(string(p))
	if ext == "" {
		return ""
	}
	return ext[1:]
}
