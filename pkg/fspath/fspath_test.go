// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"path/filepath"
	"testing"

	"github.com/cloudtek/smartbuild/pkg/fspath"
	"github.com/cloudtek/smartbuild/pkg/types"
)

func TestJoinStr(t *testing.T) {
	t.Parallel()

	got := fspath.JoinStr("root", "core", "core-pkg", "src")
	want := types.FilesystemPath(filepath.Join("root", "core", "core-pkg", "src"))
	if got != want {
		t.Errorf("JoinStr() = %q, want %q", got, want)
	}
}

func TestExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path types.FilesystemPath
		want string
	}{
		{"build.cue", "cue"},
		{"build.toml", "toml"},
		{"noext", ""},
		{"dir.d/file", ""},
	}
	for _, tt := range tests {
		if got := fspath.Ext(tt.path); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAbs(t *testing.T) {
	t.Parallel()

	got, err := fspath.Abs("artifacts")
	if err != nil {
		t.Fatalf("Abs() error: %v", err)
	}
	if !filepath.IsAbs(string(got)) {
		t.Errorf("Abs() = %q, want absolute path", got)
	}
}
