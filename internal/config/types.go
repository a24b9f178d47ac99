// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/cloudtek/smartbuild/pkg/types"
)

const (
	// ConfigurationDebug is the local default build configuration.
	ConfigurationDebug Configuration = "Debug"
	// ConfigurationRelease is the default on build servers.
	ConfigurationRelease Configuration = "Release"

	// pushTarget needs registry credentials.
	pushTarget = "Push"

	maskedSecret = "********"
)

var (
	// ErrInvalidConfiguration is returned when a Configuration value is not recognized.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrMissingParameter is the sentinel error wrapped by MissingParameterError.
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Configuration is the build configuration passed to the toolchain.
	Configuration string

	// InvalidConfigurationError is returned when a Configuration value is not recognized.
	// It wraps ErrInvalidConfiguration for errors.Is() compatibility.
	InvalidConfigurationError struct {
		Value Configuration
	}

	// MissingParameterError is returned when a requested target needs a
	// parameter that is not set.
	MissingParameterError struct {
		// Parameter is the settings key, e.g. "registry_url".
		Parameter string
		Target    string
	}

	// InvalidConfigError is returned when Settings has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// every field-level validation error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Settings are the resolved run parameters.
	Settings struct {
		// Root is the absolute repository root.
		Root types.FilesystemPath `mapstructure:"root" json:"root"`
		// Manifest is empty when the manifest is discovered in Root.
		Manifest      types.FilesystemPath `mapstructure:"manifest" json:"manifest,omitempty"`
		Configuration Configuration        `mapstructure:"configuration" json:"configuration"`
		// BuildNumber is the CI build number with dots removed.
		BuildNumber string `mapstructure:"build_number" json:"build_number,omitempty"`
		RegistryURL string `mapstructure:"registry_url" json:"registry_url,omitempty"`
		APIKey      string `mapstructure:"api_key" json:"api_key,omitempty"`
		// Parallelism bounds concurrent toolchain invocations within a target.
		Parallelism int `mapstructure:"parallelism" json:"parallelism"`
		// Version overrides git-derived versioning when set.
		Version     string               `mapstructure:"version" json:"version,omitempty"`
		MetricsFile types.FilesystemPath `mapstructure:"metrics_file" json:"metrics_file,omitempty"`
		Verbose     bool                 `mapstructure:"verbose" json:"verbose"`
		// ConfigFile is the settings file that was merged, empty if none.
		ConfigFile types.FilesystemPath `mapstructure:"-" json:"config_file,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %q (valid: Debug, Release)", e.Value)
}

// Unwrap returns ErrInvalidConfiguration for errors.Is.
func (e *InvalidConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// String returns the string form of the Configuration.
func (c Configuration) String() string { return string(c) }

// Validate returns nil if the Configuration is Debug or Release.
func (c Configuration) Validate() error {
	switch c {
	case ConfigurationDebug, ConfigurationRelease:
		return nil
	default:
		return &InvalidConfigurationError{Value: c}
	}
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	flag := "--" + strings.ReplaceAll(e.Parameter, "_", "-")
	env := EnvPrefix + "_" + strings.ToUpper(e.Parameter)
	return fmt.Sprintf("target %s requires %s (set %s or %s)", e.Target, e.Parameter, flag, env)
}

// Unwrap returns ErrMissingParameter for errors.Is.
func (e *MissingParameterError) Unwrap() error { return ErrMissingParameter }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks every field that does not depend on the requested targets.
func (s Settings) Validate() error {
	var errs []error
	if err := s.Root.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("root: %w", err))
	}
	if err := s.Configuration.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", s.Parallelism))
	}
	if s.RegistryURL != "" {
		if u, err := url.Parse(s.RegistryURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("registry_url %q is not an absolute URL", s.RegistryURL))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// ValidateFor checks the parameters required by the targets about to run.
// targets is the full execution closure, not only the requested names.
func (s Settings) ValidateFor(targets []string) error {
	if !slices.Contains(targets, pushTarget) {
		return nil
	}
	if strings.TrimSpace(s.RegistryURL) == "" {
		return &MissingParameterError{Parameter: "registry_url", Target: pushTarget}
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return &MissingParameterError{Parameter: "api_key", Target: pushTarget}
	}
	return nil
}

// Masked returns a copy safe to print, with the API key hidden.
func (s Settings) Masked() Settings {
	if s.APIKey != "" {
		s.APIKey = maskedSecret
	}
	return s
}

// NormalizeBuildNumber strips the dots CI servers put in build numbers, so
// "1.2.3.4" becomes "1234".
func NormalizeBuildNumber(n string) string {
	return strings.ReplaceAll(strings.TrimSpace(n), ".", "")
}
