// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cloudtek/smartbuild/internal/build"
	"github.com/cloudtek/smartbuild/internal/config"
	"github.com/cloudtek/smartbuild/internal/issue"
	"github.com/cloudtek/smartbuild/internal/metrics"
	"github.com/cloudtek/smartbuild/internal/toolchain"
	"github.com/cloudtek/smartbuild/internal/version"
	"github.com/cloudtek/smartbuild/pkg/manifest"
	"github.com/cloudtek/smartbuild/pkg/types"
)

// untaggedVersion is used when the root is not a git repository and no
// version override is given.
const untaggedVersion = "0.1.0"

type (
	// ToolchainFactory creates the toolchain for a run. Output is streamed to
	// stdout and stderr; observer is called after every invocation.
	ToolchainFactory func(stdout, stderr io.Writer, observer toolchain.Observer) (toolchain.Toolchain, error)

	// VersionFactory picks the version provider for the resolved settings.
	VersionFactory func(s *config.Settings) version.Provider

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command handler receives it.
	App struct {
		stdout       io.Writer
		stderr       io.Writer
		getenv       func(string) string
		newToolchain ToolchainFactory
		newVersion   VersionFactory
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Stdout    io.Writer
		Stderr    io.Writer
		Getenv    func(string) string
		Toolchain ToolchainFactory
		Version   VersionFactory
	}

	// session is the state shared by the commands of one invocation.
	session struct {
		settings     *config.Settings
		manifestPath types.FilesystemPath
		manifest     *manifest.Manifest
		logger       *log.Logger
		metrics      *metrics.Recorder
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		stdout:       deps.Stdout,
		stderr:       deps.Stderr,
		getenv:       deps.Getenv,
		newToolchain: deps.Toolchain,
		newVersion:   deps.Version,
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.getenv == nil {
		app.getenv = os.Getenv
	}
	if app.newToolchain == nil {
		app.newToolchain = dotnetToolchain
	}
	if app.newVersion == nil {
		app.newVersion = defaultVersionProvider
	}
	return app
}

func dotnetToolchain(stdout, stderr io.Writer, observer toolchain.Observer) (toolchain.Toolchain, error) {
	path, err := toolchain.LookPath()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("locate the dotnet toolchain").
			WithSuggestion("Install the .NET SDK and make sure 'dotnet' is on PATH").
			WithSuggestion("Use 'smartbuild run --dry-run' to inspect the plan without a toolchain").
			WithIssue(issue.ToolchainNotFoundId).
			Wrap(err).
			BuildError()
	}
	return toolchain.NewDotNet(
		toolchain.WithBinary(path),
		toolchain.WithOutput(stdout, stderr),
		toolchain.WithObserver(observer),
	), nil
}

func defaultVersionProvider(s *config.Settings) version.Provider {
	if s.Version != "" {
		return version.StaticProvider{Version: s.Version}
	}
	return version.GitProvider{Root: s.Root, BuildNumber: s.BuildNumber}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "smartbuild",
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadSettings resolves settings from the command's flags.
func (a *App) loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	s, err := config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: configPath,
		Flags:          cmd.Flags(),
		Getenv:         a.getenv,
	})
	if err != nil {
		return nil, &ExitError{Code: types.ExitConfiguration, Err: err}
	}
	return s, nil
}

// openSession loads settings and the manifest.
func (a *App) openSession(cmd *cobra.Command) (*session, error) {
	s, err := a.loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	sess := &session{settings: s, logger: newLogger(a.stderr, s.Verbose)}

	path, err := s.ManifestPath()
	if err != nil {
		return nil, &ExitError{Code: types.ExitConfiguration, Err: issue.NewErrorContext().
			WithOperation("load build manifest").
			WithResource(string(s.Root)).
			WithSuggestion("Create a build.cue or build.toml in the repository root").
			WithSuggestion("Pass --manifest to point at a manifest elsewhere").
			WithIssue(issue.ManifestNotFoundId).
			Wrap(err).
			BuildError()}
	}
	m, err := manifest.Load(path)
	if err != nil {
		id, ok := issueFor(err)
		if !ok {
			id = issue.ManifestParseErrorId
		}
		return nil, &ExitError{Code: types.ExitConfiguration, Err: issue.NewErrorContext().
			WithOperation("load build manifest").
			WithResource(string(path)).
			WithSuggestion("Check the manifest against the #Manifest schema").
			WithSuggestion("Run 'smartbuild manifest -v' to see the detailed error").
			WithIssue(id).
			Wrap(err).
			BuildError()}
	}
	sess.manifestPath = path
	sess.manifest = m
	sess.logger.Debug("loaded build manifest", "path", path, "modules", len(m.Modules))
	return sess, nil
}

// resolveVersion computes the version fields once per run.
func (a *App) resolveVersion(ctx context.Context, sess *session) (version.Fields, error) {
	fields, err := a.newVersion(sess.settings).Resolve(ctx)
	if errors.Is(err, version.ErrNotARepository) {
		sess.logger.Warn("root is not a git repository; using the untagged version", "version", untaggedVersion)
		return version.Parse(untaggedVersion)
	}
	if err != nil {
		return version.Fields{}, &ExitError{Code: types.ExitConfiguration, Err: issue.NewErrorContext().
			WithOperation("resolve version").
			WithResource(string(sess.settings.Root)).
			WithSuggestion("Pass --version-override to set the version explicitly").
			WithIssue(issue.VersionResolveFailedId).
			Wrap(err).
			BuildError()}
	}
	sess.logger.Debug("resolved version", "package", fields.PackageVersion, "informational", fields.InformationalVersion)
	return fields, nil
}

// newBuild assembles a Build. A nil toolchain is used for plan-only commands.
func (a *App) newBuild(sess *session, fields version.Fields, tc toolchain.Toolchain) (*build.Build, error) {
	b, err := build.New(sess.manifest, sess.settings, fields, tc,
		build.WithLogger(sess.logger),
		build.WithMetrics(sess.metrics),
	)
	if err != nil {
		return nil, &ExitError{Code: types.ExitConfiguration, Err: err}
	}
	return b, nil
}
