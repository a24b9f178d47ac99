// SPDX-License-Identifier: MPL-2.0

package version

import (
	"context"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Fields
		wantErr bool
	}{
		{
			in:   "1.2.3",
			want: Fields{PackageVersion: "1.2.3", FileVersion: "1.2.3.0", AssemblyVersion: "1.2.3.0", InformationalVersion: "1.2.3"},
		},
		{
			in:   "v2.0.0-rc.1",
			want: Fields{PackageVersion: "2.0.0-rc.1", FileVersion: "2.0.0.0", AssemblyVersion: "2.0.0.0", InformationalVersion: "2.0.0-rc.1"},
		},
		{
			in:   "1.0.0+sha.abc",
			want: Fields{PackageVersion: "1.0.0", FileVersion: "1.0.0.0", AssemblyVersion: "1.0.0.0", InformationalVersion: "1.0.0+sha.abc"},
		},
		{in: "1.2", wantErr: true},
		{in: "latest", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidVersion", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	f, err := StaticProvider{Version: "3.1.4"}.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.PackageVersion != "3.1.4" {
		t.Errorf("PackageVersion = %q", f.PackageVersion)
	}
	if _, err := (StaticProvider{Version: "nope"}).Resolve(context.Background()); err == nil {
		t.Error("Resolve() accepted an invalid version")
	}
}
