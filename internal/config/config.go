// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cloudtek/smartbuild/internal/issue"
	"github.com/cloudtek/smartbuild/pkg/fspath"
	"github.com/cloudtek/smartbuild/pkg/fsutil"
	"github.com/cloudtek/smartbuild/pkg/manifest"
	"github.com/cloudtek/smartbuild/pkg/types"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SMARTBUILD_API_KEY.
	EnvPrefix = "SMARTBUILD"
	// FileName is the settings file looked up in the root directory.
	FileName = "smartbuild.cue"
	// DefaultParallelism runs per-artifact work sequentially.
	DefaultParallelism = 1
)

//go:embed config_schema.cue
var configSchema string

// buildServerEnvVars are set by the CI systems smartbuild recognizes.
var buildServerEnvVars = []string{"CI", "TF_BUILD", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TEAMCITY_VERSION"}

// FlagKeys maps command-line flag names to settings keys.
var FlagKeys = map[string]string{
	"root":             "root",
	"manifest":         "manifest",
	"configuration":    "configuration",
	"build-number":     "build_number",
	"registry-url":     "registry_url",
	"api-key":          "api_key",
	"parallelism":      "parallelism",
	"version-override": "version",
	"metrics-file":     "metrics_file",
	"verbose":          "verbose",
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific settings file when set.
	ConfigFilePath string
	// Flags are bound by FlagKeys; unknown flags are ignored.
	Flags *pflag.FlagSet
	// Getenv is used for build server detection. Defaults to os.Getenv.
	Getenv func(string) string
}

// IsBuildServer reports whether any recognized CI environment variable is set.
func IsBuildServer(getenv func(string) string) bool {
	for _, name := range buildServerEnvVars {
		if getenv(name) != "" {
			return true
		}
	}
	return false
}

// DefaultConfiguration is Release on build servers and Debug elsewhere.
func DefaultConfiguration(getenv func(string) string) Configuration {
	if IsBuildServer(getenv) {
		return ConfigurationRelease
	}
	return ConfigurationDebug
}

// Load resolves settings from defaults, the settings file, the environment
// and flags, then validates them.
func Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	v := viper.New()
	v.SetDefault("root", ".")
	v.SetDefault("manifest", "")
	v.SetDefault("configuration", string(DefaultConfiguration(getenv)))
	v.SetDefault("build_number", "")
	v.SetDefault("registry_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("parallelism", DefaultParallelism)
	v.SetDefault("version", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.Flags != nil {
		for flagName, key := range FlagKeys {
			if f := opts.Flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flagName, err)
				}
			}
		}
	}

	root, err := fspath.Abs(types.FilesystemPath(v.GetString("root")))
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	configPath := types.FilesystemPath(opts.ConfigFilePath)
	if configPath != "" {
		if !fsutil.FileExists(configPath) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(string(configPath)).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", configPath)).
				BuildError()
		}
	} else if candidate := fspath.JoinStr(root, FileName); fsutil.FileExists(candidate) {
		configPath = candidate
	}

	if configPath != "" {
		if err := loadCUEIntoViper(v, configPath, string(root)); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				WithResource(string(configPath)).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the #Config schema").
				WithSuggestion("See 'smartbuild config show' for the effective settings").
				Wrap(err).
				BuildError()
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	s.Root = root
	s.ConfigFile = configPath
	s.BuildNumber = NormalizeBuildNumber(s.BuildNumber)
	// A relative manifest is relative to the repository root.
	if s.Manifest != "" && !filepath.IsAbs(string(s.Manifest)) {
		s.Manifest = fspath.JoinStr(s.Root, string(s.Manifest))
	}

	if err := s.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("configuration must be Debug or Release").
			WithSuggestion("parallelism must be a positive integer").
			Wrap(err).
			BuildError()
	}
	return &s, nil
}

// ManifestPath returns the configured manifest or discovers one in Root.
func (s *Settings) ManifestPath() (types.FilesystemPath, error) {
	if s.Manifest != "" {
		return s.Manifest, nil
	}
	return manifest.Find(s.Root)
}

// loadCUEIntoViper parses a CUE settings file, validates it against the
// #Config schema, and merges it into v. A relative manifest path in the file
// is resolved against root.
func loadCUEIntoViper(v *viper.Viper, path types.FilesystemPath, root string) error {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if int64(len(data)) > manifest.MaxFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), manifest.MaxFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(string(path)))
	if userValue.Err() != nil {
		return fmt.Errorf("%s: %w", path, userValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if m, ok := configMap["manifest"].(string); ok && !filepath.IsAbs(m) {
		configMap["manifest"] = filepath.Join(root, m)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// GenerateCUE renders settings as a smartbuild.cue document. Empty optional
// fields are omitted; the API key is never written.
func GenerateCUE(s *Settings) string {
	var sb strings.Builder

	sb.WriteString("// smartbuild settings\n\n")
	if s.Manifest != "" {
		fmt.Fprintf(&sb, "manifest: %q\n", s.Manifest)
	}
	fmt.Fprintf(&sb, "configuration: %q\n", s.Configuration)
	if s.BuildNumber != "" {
		fmt.Fprintf(&sb, "build_number: %q\n", s.BuildNumber)
	}
	if s.RegistryURL != "" {
		fmt.Fprintf(&sb, "registry_url: %q\n", s.RegistryURL)
	}
	fmt.Fprintf(&sb, "parallelism: %d\n", s.Parallelism)
	if s.Version != "" {
		fmt.Fprintf(&sb, "version: %q\n", s.Version)
	}
	if s.MetricsFile != "" {
		fmt.Fprintf(&sb, "metrics_file: %q\n", s.MetricsFile)
	}
	fmt.Fprintf(&sb, "verbose: %v\n", s.Verbose)

	return sb.String()
}
