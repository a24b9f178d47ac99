// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/cloudtek/smartbuild/pkg/fspath"
	"github.com/cloudtek/smartbuild/pkg/fsutil"
	"github.com/cloudtek/smartbuild/pkg/types"
)

const (
	// CUEFileName is the preferred manifest file name.
	CUEFileName = "build.cue"
	// TOMLFileName is the alternative manifest file name.
	TOMLFileName = "build.toml"
)

var (
	// ErrManifestNotFound is returned when no manifest exists in the root directory.
	ErrManifestNotFound = errors.New("build manifest not found")
	// ErrUnsupportedFormat is returned for manifest files that are neither CUE nor TOML.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
)

// Find returns the manifest path in root, preferring build.cue over build.toml.
func Find(root types.FilesystemPath) (types.FilesystemPath, error) {
	for _, name := range []string{CUEFileName, TOMLFileName} {
		candidate := fspath.JoinStr(root, name)
		if fsutil.FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s, %s)", ErrManifestNotFound, root, CUEFileName, TOMLFileName)
}

// Load reads, parses and validates the manifest at path. The format is chosen
// by file extension.
func Load(path types.FilesystemPath) (*Manifest, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m *Manifest
	switch ext := fspath.Ext(path); ext {
	case "cue":
		m, err = ParseCUE(data, string(path))
	case "toml":
		m, err = ParseTOML(data, string(path))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseTOML decodes a TOML manifest, rejecting unknown keys, and applies the
// defaults the CUE schema would apply.
func ParseTOML(data []byte, filename string) (*Manifest, error) {
	if err := checkFileSize(data, filename); err != nil {
		return nil, err
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %s", filename, row, col, decErr.Error())
		}
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("%s: %s", filename, strictErr.String())
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	m.applyDefaults()
	return &m, nil
}
