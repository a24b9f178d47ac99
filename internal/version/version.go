// SPDX-License-Identifier: MPL-2.0

package version

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

type (
	// Fields are the version properties passed to the toolchain.
	Fields struct {
		// PackageVersion is the full semantic version used for packages.
		PackageVersion string `json:"package_version"`
		// FileVersion is the four-part file version.
		FileVersion string `json:"file_version"`
		// AssemblyVersion is the four-part assembly version.
		AssemblyVersion string `json:"assembly_version"`
		// InformationalVersion carries the commit when known.
		InformationalVersion string `json:"informational_version"`
	}

	// Provider computes version fields for a run.
	Provider interface {
		Resolve(ctx context.Context) (Fields, error)
	}

	// InvalidVersionError is returned for strings that are not semantic versions.
	InvalidVersionError struct {
		Value string
	}

	// StaticProvider returns fields derived from a fixed version string.
	StaticProvider struct {
		Version string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q (expected MAJOR.MINOR.PATCH[-PRERELEASE])", e.Value)
}

// Unwrap returns ErrInvalidVersion for errors.Is.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Resolve parses the static version.
func (p StaticProvider) Resolve(context.Context) (Fields, error) {
	return Parse(p.Version)
}

// Parse turns "1.2.3" or "v1.2.3-rc.1" into Fields. Build metadata is
// carried into the informational version only.
func Parse(v string) (Fields, error) {
	canonical, ok := normalize(v)
	if !ok {
		return Fields{}, &InvalidVersionError{Value: v}
	}
	f := fromCanonical(canonical)
	if build := semver.Build(canonical); build != "" {
		f.InformationalVersion = f.PackageVersion + build
	}
	return f, nil
}

// normalize returns the v-prefixed form of v when it is a full
// MAJOR.MINOR.PATCH semantic version.
func normalize(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	// semver accepts the shorthands v1 and v1.2; versions here are always full.
	core := strings.SplitN(strings.TrimPrefix(v, "v"), "-", 2)[0]
	core = strings.SplitN(core, "+", 2)[0]
	if strings.Count(core, ".") != 2 {
		return "", false
	}
	return v, true
}

// fromCanonical builds fields from a valid v-prefixed version.
func fromCanonical(v string) Fields {
	pkg := strings.TrimPrefix(semver.Canonical(v), "v")
	core := coreOf(v)
	return Fields{
		PackageVersion:       pkg,
		FileVersion:          core + ".0",
		AssemblyVersion:      core + ".0",
		InformationalVersion: pkg,
	}
}

// coreOf returns MAJOR.MINOR.PATCH without the v prefix.
func coreOf(v string) string {
	c := semver.Canonical(v)
	return strings.TrimPrefix(strings.TrimSuffix(c, semver.Prerelease(c)), "v")
}
