// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"github.com/cloudtek/smartbuild/pkg/fspath"
	"github.com/cloudtek/smartbuild/pkg/types"
)

const (
	// CoverageMergeFile accumulates partial coverage between test invocations.
	CoverageMergeFile = "coverage.temp.json"
	// CoverageReportFile is the finalized Cobertura report.
	CoverageReportFile = "coverage.xml"
	// CoverageReportFormat is the coverlet output format of the finalized report.
	CoverageReportFormat = "cobertura"

	packageFileExt = "nupkg"
)

// Resolver maps manifest entries to filesystem locations under Root. It
// performs no I/O: callers check existence separately, so a malformed entry
// simply resolves to a path that does not exist.
type Resolver struct {
	Root      types.FilesystemPath
	Extension string
}

// NewResolver returns a Resolver for root using the manifest's project extension.
func NewResolver(root types.FilesystemPath, m *Manifest) Resolver {
	return Resolver{Root: root, Extension: m.Extension()}
}

// SourceProject returns root/{module}/{artifact}/src/{project}/{project}.{ext}.
func (r Resolver) SourceProject(module string, a Artifact) types.FilesystemPath {
	return fspath.JoinStr(r.Root, module, a.Name, "src", a.Project, a.Project+"."+r.ext())
}

// TestProject returns root/{module}/{artifact}/tests/{project}.Tests/{project}.Tests.{ext}.
func (r Resolver) TestProject(module string, a Artifact) types.FilesystemPath {
	testProject := a.Project + ".Tests"
	return fspath.JoinStr(r.Root, module, a.Name, "tests", testProject, testProject+"."+r.ext())
}

// ArtifactsDir is the root of packed and published outputs.
func (r Resolver) ArtifactsDir() types.FilesystemPath {
	return fspath.JoinStr(r.Root, "artifacts")
}

// TestResultsDir is the root of per-artifact test result logs.
func (r Resolver) TestResultsDir() types.FilesystemPath {
	return fspath.JoinStr(r.Root, "tests", "results")
}

// TestCoverageDir holds the coverage accumulator and the final report.
func (r Resolver) TestCoverageDir() types.FilesystemPath {
	return fspath.JoinStr(r.Root, "tests", "coverage")
}

// OutputDirs lists the directories reset by Clean, in reset order.
func (r Resolver) OutputDirs() []types.FilesystemPath {
	return []types.FilesystemPath{r.ArtifactsDir(), r.TestResultsDir(), r.TestCoverageDir()}
}

// OutputDir is the pack/publish output directory of an artifact.
func (r Resolver) OutputDir(a Artifact) types.FilesystemPath {
	return fspath.JoinStr(r.ArtifactsDir(), a.Name)
}

// ResultsDir is the test results directory of an artifact.
func (r Resolver) ResultsDir(a Artifact) types.FilesystemPath {
	return fspath.JoinStr(r.TestResultsDir(), a.Name)
}

// PackageFile is the packed package of an artifact at the given version.
func (r Resolver) PackageFile(a Artifact, version string) types.FilesystemPath {
	return fspath.JoinStr(r.OutputDir(a), a.Project+"."+version+"."+packageFileExt)
}

// CoverageMergePath is the accumulator shared by every coverage invocation.
func (r Resolver) CoverageMergePath() types.FilesystemPath {
	return fspath.JoinStr(r.TestCoverageDir(), CoverageMergeFile)
}

// CoverageReportPath is the finalized coverage report.
func (r Resolver) CoverageReportPath() types.FilesystemPath {
	return fspath.JoinStr(r.TestCoverageDir(), CoverageReportFile)
}

// TestLogName is the trx log file name of one test category run.
func TestLogName(a Artifact, category string) string {
	return a.Project + "." + category + ".trx"
}

func (r Resolver) ext() string {
	if r.Extension == "" {
		return DefaultProjectExtension
	}
	return r.Extension
}
