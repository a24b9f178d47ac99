// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for smartbuild.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/cloudtek/smartbuild/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "smartbuild",
		Short: "Build, test and package a multi-module .NET repository",
		Long: TitleStyle.Render("smartbuild") + SubtitleStyle.Render(" - Build, test and package a multi-module .NET repository") + `

smartbuild reads a build manifest (build.cue or build.toml) listing modules
and their artifacts, and runs a fixed set of targets over them with the
dotnet toolchain. Targets run in dependency order and each runs once.

` + SubtitleStyle.Render("Examples:") + `
  smartbuild run                    Restore and compile every artifact
  smartbuild run Pack Push          Pack package artifacts and push them
  smartbuild run UnitTests -v       Run unit tests with coverage, verbose
  smartbuild plan Push              Show what 'run Push' would execute
  smartbuild manifest               Show modules, artifacts and test projects
  smartbuild config show            Show the effective settings`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("root", ".", "repository root containing the build manifest")
	flags.String("manifest", "", "build manifest path (default: build.cue or build.toml in the root)")
	flags.String("config", "", "settings file (default: smartbuild.cue in the root)")
	flags.String("configuration", "", "build configuration, Debug or Release (default: Release on CI, Debug otherwise)")
	flags.String("build-number", "", "CI build number; dots are removed")
	flags.String("registry-url", "", "package registry URL used by Push")
	flags.String("api-key", "", "package registry API key used by Push")
	flags.Int("parallelism", config.DefaultParallelism, "concurrent toolchain invocations per target")
	flags.String("version-override", "", "use this version instead of deriving one from git tags")
	flags.String("metrics-file", "", "write Prometheus metrics to this file after a run")
	flags.BoolP("verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		newRunCommand(app),
		newPlanCommand(app),
		newTargetsCommand(app),
		newManifestCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// Execute runs the CLI and exits with the code of the first failure.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

func verboseFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}
