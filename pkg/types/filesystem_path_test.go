// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    FilesystemPath
		wantErr bool
	}{
		{"project file", FilesystemPath("/repo/core/core-pkg/src/Core/Core.csproj"), false},
		{"relative dir", FilesystemPath("artifacts"), false},
		{"dot", FilesystemPath("."), false},
		{"empty", FilesystemPath(""), true},
		{"whitespace", FilesystemPath("   "), true},
		{"tab", FilesystemPath("\t"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FilesystemPath(%q).Validate() error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidFilesystemPath) {
				t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", err)
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(err, &fpErr) {
				t.Errorf("error should be *InvalidFilesystemPathError, got: %T", err)
			}
		})
	}
}

func TestFilesystemPath_String(t *testing.T) {
	t.Parallel()
	p := FilesystemPath("tests/coverage")
	if p.String() != "tests/coverage" {
		t.Errorf("String() = %q, want %q", p.String(), "tests/coverage")
	}
}
