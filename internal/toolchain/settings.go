// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"github.com/cloudtek/smartbuild/internal/version"
	"github.com/cloudtek/smartbuild/pkg/types"
)

type (
	// RestoreSettings configures `dotnet restore`.
	RestoreSettings struct {
		Project types.FilesystemPath
	}

	// BuildSettings configures `dotnet build`. Restore is always skipped since
	// the Restore target has already run.
	BuildSettings struct {
		Project       types.FilesystemPath
		Configuration string
		Version       version.Fields
	}

	// PackSettings configures `dotnet pack` on an already built project.
	PackSettings struct {
		Project       types.FilesystemPath
		Configuration string
		Version       version.Fields
		OutputDir     types.FilesystemPath
	}

	// PublishSettings configures `dotnet publish` on an already built project.
	PublishSettings struct {
		Project       types.FilesystemPath
		Configuration string
		Version       version.Fields
		OutputDir     types.FilesystemPath
	}

	// PushSettings configures `dotnet nuget push`.
	PushSettings struct {
		Package types.FilesystemPath
		Source  string
		APIKey  string
	}

	// TestSettings configures `dotnet test`.
	TestSettings struct {
		Project       types.FilesystemPath
		Configuration string
		Filter        string
		Logger        string
		ResultsDir    types.FilesystemPath
		// Coverage is nil for categories without coverage collection.
		Coverage *CoverageSettings
	}

	// CoverageSettings configures coverlet through MSBuild properties. Every
	// invocation merges into MergeWith; Final switches the output from the
	// accumulator to the Cobertura report.
	CoverageSettings struct {
		MergeWith types.FilesystemPath
		Output    types.FilesystemPath
		// Format is set only on the final invocation.
		Format string
		Final  bool
	}
)

// Args renders `restore <project>`.
func (s RestoreSettings) Args() []string {
	return []string{"restore", string(s.Project)}
}

// Args renders `build <project> --configuration <c> --no-restore` plus version properties.
func (s BuildSettings) Args() []string {
	args := []string{"build", string(s.Project)}
	args = appendConfiguration(args, s.Configuration)
	args = append(args, "--no-restore")
	return appendVersion(args, s.Version)
}

// Args renders `pack <project> --configuration <c> --output <dir> --no-build` plus version properties.
func (s PackSettings) Args() []string {
	args := []string{"pack", string(s.Project)}
	args = appendConfiguration(args, s.Configuration)
	if s.OutputDir != "" {
		args = append(args, "--output", string(s.OutputDir))
	}
	args = append(args, "--no-build")
	return appendVersion(args, s.Version)
}

// Args renders `publish <project> --configuration <c> --output <dir> --no-build` plus version properties.
func (s PublishSettings) Args() []string {
	args := []string{"publish", string(s.Project)}
	args = appendConfiguration(args, s.Configuration)
	if s.OutputDir != "" {
		args = append(args, "--output", string(s.OutputDir))
	}
	args = append(args, "--no-build")
	return appendVersion(args, s.Version)
}

// Args renders `nuget push <package> --source <url> --api-key <key>`.
func (s PushSettings) Args() []string {
	return []string{"nuget", "push", string(s.Package), "--source", s.Source, "--api-key", s.APIKey}
}

// Redacted returns Args with the API key masked, for logging.
func (s PushSettings) Redacted() []string {
	args := s.Args()
	args[len(args)-1] = "***"
	return args
}

// Args renders `test <project>` with filter, logger, configuration, results
// directory and, for coverage categories, the coverlet properties.
func (s TestSettings) Args() []string {
	args := []string{"test", string(s.Project)}
	args = appendConfiguration(args, s.Configuration)
	if s.Filter != "" {
		args = append(args, "--filter", s.Filter)
	}
	if s.Logger != "" {
		args = append(args, "--logger", s.Logger)
	}
	if s.ResultsDir != "" {
		args = append(args, "--results-directory", string(s.ResultsDir))
	}
	if s.Coverage != nil {
		args = append(args, s.Coverage.Args()...)
	}
	return args
}

// Args renders the coverlet MSBuild arguments in the order dotnet receives them.
func (c CoverageSettings) Args() []string {
	args := []string{
		"/p:CollectCoverage=true",
		"/maxcpucount:1",
		"/p:MergeWith=" + string(c.MergeWith),
		"/p:CoverletOutput=" + string(c.Output),
	}
	if c.Final && c.Format != "" {
		args = append(args, "/p:CoverletOutputFormat="+c.Format)
	}
	return args
}

func appendConfiguration(args []string, configuration string) []string {
	if configuration == "" {
		return args
	}
	return append(args, "--configuration", configuration)
}

func appendVersion(args []string, v version.Fields) []string {
	if v.PackageVersion != "" {
		args = append(args, "/p:Version="+v.PackageVersion)
	}
	if v.FileVersion != "" {
		args = append(args, "/p:FileVersion="+v.FileVersion)
	}
	if v.AssemblyVersion != "" {
		args = append(args, "/p:AssemblyVersion="+v.AssemblyVersion)
	}
	if v.InformationalVersion != "" {
		args = append(args, "/p:InformationalVersion="+v.InformationalVersion)
	}
	return args
}
