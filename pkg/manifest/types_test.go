// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"testing"
)

func TestArtifactType_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value ArtifactType
		want  bool
	}{
		{ArtifactPackage, true},
		{ArtifactContainer, true},
		{ArtifactLib, true},
		{"", false},
		{"Package", false},
		{"binary", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.value.IsValid()
			if valid != tt.want {
				t.Errorf("IsValid() = %v, want %v", valid, tt.want)
			}
			if !tt.want {
				if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidArtifactType) {
					t.Errorf("IsValid() errs = %v, want ErrInvalidArtifactType", errs)
				}
			}
		})
	}
}

func TestStability_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Stability{StabilityStable, StabilityPreRelease} {
		if valid, _ := s.IsValid(); !valid {
			t.Errorf("%q.IsValid() = false", s)
		}
	}
	valid, errs := Stability("beta").IsValid()
	if valid || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidStability) {
		t.Errorf("IsValid() = %v, %v; want false, ErrInvalidStability", valid, errs)
	}
}

func TestArtifact_IsPackage(t *testing.T) {
	t.Parallel()

	if !(Artifact{Type: ArtifactPackage}).IsPackage() {
		t.Error("package artifact IsPackage() = false")
	}
	for _, typ := range []ArtifactType{ArtifactLib, ArtifactContainer} {
		if (Artifact{Type: typ}).IsPackage() {
			t.Errorf("%s artifact IsPackage() = true", typ)
		}
	}
}

func TestManifest_Validate(t *testing.T) {
	t.Parallel()

	good := Artifact{Name: "core-pkg", Project: "Core", Type: ArtifactPackage, Stability: StabilityStable}

	tests := []struct {
		name    string
		m       Manifest
		wantErr error
	}{
		{
			name: "valid",
			m:    Manifest{Modules: []Module{{Name: "core", Artifacts: []Artifact{good}}}},
		},
		{
			name: "empty manifest",
			m:    Manifest{},
		},
		{
			name: "module with no artifacts",
			m:    Manifest{Modules: []Module{{Name: "docs"}}},
		},
		{
			name:    "empty module name",
			m:       Manifest{Modules: []Module{{Name: " ", Artifacts: []Artifact{good}}}},
			wantErr: ErrInvalidModule,
		},
		{
			name:    "duplicate module",
			m:       Manifest{Modules: []Module{{Name: "core"}, {Name: "core"}}},
			wantErr: ErrInvalidModule,
		},
		{
			name:    "duplicate artifact",
			m:       Manifest{Modules: []Module{{Name: "core", Artifacts: []Artifact{good, good}}}},
			wantErr: ErrInvalidModule,
		},
		{
			name: "bad artifact type",
			m: Manifest{Modules: []Module{{Name: "core", Artifacts: []Artifact{
				{Name: "x", Project: "X", Type: "exe", Stability: StabilityStable},
			}}}},
			wantErr: ErrInvalidArtifact,
		},
		{
			name: "missing project",
			m: Manifest{Modules: []Module{{Name: "core", Artifacts: []Artifact{
				{Name: "x", Type: ArtifactLib, Stability: StabilityStable},
			}}}},
			wantErr: ErrInvalidArtifact,
		},
		{
			name: "artifact name with separator",
			m: Manifest{Modules: []Module{{Name: "core", Artifacts: []Artifact{
				{Name: "../../outside", Project: "X", Type: ArtifactPackage, Stability: StabilityStable},
			}}}},
			wantErr: ErrInvalidArtifact,
		},
		{
			name:    "dot-dot module name",
			m:       Manifest{Modules: []Module{{Name: "..", Artifacts: []Artifact{good}}}},
			wantErr: ErrInvalidModule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.m.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidManifest) {
				t.Fatalf("Validate() = %v, want ErrInvalidManifest", err)
			}
			var invalid *InvalidManifestError
			if !errors.As(err, &invalid) {
				t.Fatalf("Validate() error type = %T", err)
			}
			found := false
			for _, fe := range invalid.FieldErrors {
				if errors.Is(fe, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("FieldErrors = %v, want one matching %v", invalid.FieldErrors, tt.wantErr)
			}
		})
	}
}

func TestManifest_PairsAndFind(t *testing.T) {
	t.Parallel()

	m := &Manifest{Modules: []Module{
		{Name: "b", Artifacts: []Artifact{{Name: "b1"}, {Name: "b2"}}},
		{Name: "a", Artifacts: []Artifact{{Name: "a1"}}},
	}}

	pairs := m.Pairs()
	want := []string{"b/b1", "b/b2", "a/a1"}
	if len(pairs) != len(want) {
		t.Fatalf("Pairs() len = %d, want %d", len(pairs), len(want))
	}
	for i, p := range pairs {
		if got := p.Module + "/" + p.Artifact.Name; got != want[i] {
			t.Errorf("Pairs()[%d] = %s, want %s", i, got, want[i])
		}
	}

	if _, ok := m.Find("a", "a1"); !ok {
		t.Error("Find(a, a1) not found")
	}
	if _, ok := m.Find("a", "b1"); ok {
		t.Error("Find(a, b1) found an artifact of another module")
	}
	if m.Extension() != DefaultProjectExtension {
		t.Errorf("Extension() = %q", m.Extension())
	}
}
