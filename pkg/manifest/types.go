// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ArtifactPackage is a publishable package. Only package artifacts are
	// packed, published and pushed.
	ArtifactPackage ArtifactType = "package"
	// ArtifactContainer is a container image.
	ArtifactContainer ArtifactType = "container"
	// ArtifactLib is a library consumed by other artifacts of the tree.
	ArtifactLib ArtifactType = "lib"

	// StabilityStable marks an artifact released on the stable channel.
	StabilityStable Stability = "stable"
	// StabilityPreRelease marks an artifact released on the pre-release channel.
	StabilityPreRelease Stability = "prerelease"

	// DefaultProjectExtension is the project file extension used when the
	// manifest does not declare one.
	DefaultProjectExtension = "csproj"
)

var (
	// ErrInvalidArtifactType is the sentinel error wrapped by InvalidArtifactTypeError.
	ErrInvalidArtifactType = errors.New("invalid artifact type")
	// ErrInvalidStability is the sentinel error wrapped by InvalidStabilityError.
	ErrInvalidStability = errors.New("invalid stability")
	// ErrInvalidArtifact is the sentinel error wrapped by InvalidArtifactError.
	ErrInvalidArtifact = errors.New("invalid artifact")
	// ErrInvalidModule is the sentinel error wrapped by InvalidModuleError.
	ErrInvalidModule = errors.New("invalid module")
	// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid manifest")
)

type (
	// ArtifactType gates which targets act on an artifact.
	ArtifactType string

	// InvalidArtifactTypeError is returned when an ArtifactType is not recognized.
	InvalidArtifactTypeError struct {
		Value ArtifactType
	}

	// Stability is the release channel of an artifact. It is carried for
	// version-channel decisions and does not change target behavior.
	Stability string

	// InvalidStabilityError is returned when a Stability is not recognized.
	InvalidStabilityError struct {
		Value Stability
	}

	// Artifact is a single buildable unit of a module.
	Artifact struct {
		// Name is the artifact directory under its module and the output
		// subdirectory for packages and test results.
		Name string `json:"name" toml:"name"`
		// Project is the project identifier used to build source and test
		// project paths and package file names.
		Project   string       `json:"project" toml:"project"`
		Type      ArtifactType `json:"type" toml:"type"`
		Stability Stability    `json:"stability" toml:"stability"`
	}

	// InvalidArtifactError collects field errors of one artifact.
	InvalidArtifactError struct {
		Module      string
		Artifact    string
		FieldErrors []error
	}

	// Module is a named top-level directory holding one or more artifacts.
	Module struct {
		Name      string     `json:"name" toml:"name"`
		Artifacts []Artifact `json:"artifacts" toml:"artifacts"`
	}

	// InvalidModuleError collects errors of one module.
	InvalidModuleError struct {
		Module      string
		FieldErrors []error
	}

	// Manifest is the full declared module set of a repository.
	Manifest struct {
		// ProjectExtension is the project file extension without the dot.
		ProjectExtension string   `json:"project_extension" toml:"project_extension"`
		Modules          []Module `json:"modules" toml:"modules"`
	}

	// InvalidManifestError collects every validation error of a manifest.
	InvalidManifestError struct {
		FieldErrors []error
	}

	// Pair is one (module, artifact) position of a manifest traversal.
	Pair struct {
		Module   string
		Artifact Artifact
	}
)

// Error implements the error interface.
func (e *InvalidArtifactTypeError) Error() string {
	return fmt.Sprintf("invalid artifact type %q (valid: package, container, lib)", e.Value)
}

// Unwrap returns ErrInvalidArtifactType for errors.Is.
func (e *InvalidArtifactTypeError) Unwrap() error { return ErrInvalidArtifactType }

// String returns the string form of the ArtifactType.
func (t ArtifactType) String() string { return string(t) }

// IsValid reports whether the ArtifactType is one of the defined constants.
func (t ArtifactType) IsValid() (bool, []error) {
	switch t {
	case ArtifactPackage, ArtifactContainer, ArtifactLib:
		return true, nil
	default:
		return false, []error{&InvalidArtifactTypeError{Value: t}}
	}
}

// Error implements the error interface.
func (e *InvalidStabilityError) Error() string {
	return fmt.Sprintf("invalid stability %q (valid: stable, prerelease)", e.Value)
}

// Unwrap returns ErrInvalidStability for errors.Is.
func (e *InvalidStabilityError) Unwrap() error { return ErrInvalidStability }

// String returns the string form of the Stability.
func (s Stability) String() string { return string(s) }

// IsValid reports whether the Stability is one of the defined constants.
func (s Stability) IsValid() (bool, []error) {
	switch s {
	case StabilityStable, StabilityPreRelease:
		return true, nil
	default:
		return false, []error{&InvalidStabilityError{Value: s}}
	}
}

// IsPackage reports whether the artifact is packed, published and pushed.
func (a Artifact) IsPackage() bool { return a.Type == ArtifactPackage }

// IsValid validates the artifact fields.
func (a Artifact) IsValid() (bool, []error) {
	var errs []error
	if err := checkSegment("name", a.Name); err != nil {
		errs = append(errs, err)
	}
	if err := checkSegment("project", a.Project); err != nil {
		errs = append(errs, err)
	}
	if valid, fieldErrs := a.Type.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := a.Stability.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidArtifactError) Error() string {
	return fmt.Sprintf("module %q: artifact %q: %s", e.Module, e.Artifact, joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidArtifact for errors.Is.
func (e *InvalidArtifactError) Unwrap() error { return ErrInvalidArtifact }

// IsValid validates the module name and every artifact. Artifact names must
// be unique within the module. An empty artifact list is valid.
func (m Module) IsValid() (bool, []error) {
	var errs []error
	if err := checkSegment("name", m.Name); err != nil {
		errs = append(errs, &InvalidModuleError{Module: m.Name, FieldErrors: []error{err}})
	}
	seen := make(map[string]bool, len(m.Artifacts))
	for _, a := range m.Artifacts {
		if valid, fieldErrs := a.IsValid(); !valid {
			errs = append(errs, &InvalidArtifactError{Module: m.Name, Artifact: a.Name, FieldErrors: fieldErrs})
		}
		if a.Name != "" && seen[a.Name] {
			errs = append(errs, &InvalidModuleError{Module: m.Name, FieldErrors: []error{fmt.Errorf("duplicate artifact %q", a.Name)}})
		}
		seen[a.Name] = true
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidModuleError) Error() string {
	return fmt.Sprintf("module %q: %s", e.Module, joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidModule for errors.Is.
func (e *InvalidModuleError) Unwrap() error { return ErrInvalidModule }

// Validate checks the whole manifest. Module names must be unique.
func (m *Manifest) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(m.Modules))
	for _, mod := range m.Modules {
		if valid, fieldErrs := mod.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if mod.Name != "" && seen[mod.Name] {
			errs = append(errs, &InvalidModuleError{Module: mod.Name, FieldErrors: []error{errors.New("duplicate module name")}})
		}
		seen[mod.Name] = true
	}
	if len(errs) > 0 {
		return &InvalidManifestError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest: %d error(s):\n  %s", len(e.FieldErrors), joinErrorsSep(e.FieldErrors, "\n  "))
}

// Unwrap returns ErrInvalidManifest for errors.Is.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// Extension returns the project file extension, falling back to
// DefaultProjectExtension.
func (m *Manifest) Extension() string {
	if m.ProjectExtension == "" {
		return DefaultProjectExtension
	}
	return m.ProjectExtension
}

// Pairs returns every (module, artifact) pair in declared order.
func (m *Manifest) Pairs() []Pair {
	var pairs []Pair
	for _, mod := range m.Modules {
		for _, a := range mod.Artifacts {
			pairs = append(pairs, Pair{Module: mod.Name, Artifact: a})
		}
	}
	return pairs
}

// Find looks up an artifact by module and artifact name.
func (m *Manifest) Find(module, artifact string) (Artifact, bool) {
	for _, mod := range m.Modules {
		if mod.Name != module {
			continue
		}
		for _, a := range mod.Artifacts {
			if a.Name == artifact {
				return a, true
			}
		}
	}
	return Artifact{}, false
}

// applyDefaults fills optional fields the TOML decoder leaves empty. The CUE
// schema applies the same defaults during unification.
func (m *Manifest) applyDefaults() {
	if m.ProjectExtension == "" {
		m.ProjectExtension = DefaultProjectExtension
	}
	for i := range m.Modules {
		for j := range m.Modules[i].Artifacts {
			if m.Modules[i].Artifacts[j].Stability == "" {
				m.Modules[i].Artifacts[j].Stability = StabilityStable
			}
		}
	}
}

// checkSegment rejects values that cannot be used as a single directory
// name: empty, containing a path separator, or "." and "..".
func checkSegment(field, value string) error {
	switch {
	case strings.TrimSpace(value) == "":
		return fmt.Errorf("%s must be non-empty", field)
	case strings.ContainsAny(value, `/\`):
		return fmt.Errorf("%s %q must not contain a path separator", field, value)
	case value == "." || value == "..":
		return fmt.Errorf("%s %q must not be a relative path element", field, value)
	}
	return nil
}

func joinErrors(errs []error) string {
	return joinErrorsSep(errs, "; ")
}

func joinErrorsSep(errs []error, sep string) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, sep)
}
