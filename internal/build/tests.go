// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"slices"

	"github.com/cloudtek/smartbuild/internal/toolchain"
	"github.com/cloudtek/smartbuild/pkg/manifest"
)

// Category is a test category. Its name is the value of the test filter and
// of the target that runs it.
type Category string

// Test categories.
const (
	CategoryUnit        Category = TargetUnitTests
	CategoryIntegration Category = TargetIntegrationTests
	CategoryModule      Category = TargetModuleTests
	CategorySystem      Category = TargetSystemTests
	CategorySmoke       Category = TargetSmokeTests
)

var (
	// Categories lists every test category in target registration order.
	Categories = []Category{CategoryUnit, CategoryIntegration, CategoryModule, CategorySystem, CategorySmoke}

	coverageCategories = []Category{CategoryUnit, CategoryIntegration}
)

// TracksCoverage reports whether runs of c collect and merge coverage.
func (c Category) TracksCoverage() bool {
	return slices.Contains(coverageCategories, c)
}

// Filter is the toolchain test filter selecting c.
func (c Category) Filter() string {
	return "Category=" + string(c)
}

// TestSettings builds the toolchain settings for one category run of an
// artifact. Coverage categories merge into the shared accumulator; the final
// artifact writes the Cobertura report instead.
func (b *Build) TestSettings(c Category, p manifest.Pair) toolchain.TestSettings {
	s := toolchain.TestSettings{
		Project:       b.resolver.TestProject(p.Module, p.Artifact),
		Configuration: b.settings.Configuration.String(),
		Filter:        c.Filter(),
		Logger:        "trx;LogFileName=" + manifest.TestLogName(p.Artifact, string(c)),
		ResultsDir:    b.resolver.ResultsDir(p.Artifact),
	}
	if !c.TracksCoverage() {
		return s
	}

	cov := &toolchain.CoverageSettings{
		MergeWith: b.resolver.CoverageMergePath(),
		Output:    b.resolver.CoverageMergePath(),
	}
	if b.isFinal(p) {
		cov.Output = b.resolver.CoverageReportPath()
		cov.Format = manifest.CoverageReportFormat
		cov.Final = true
	}
	s.Coverage = cov
	return s
}

func (b *Build) isFinal(p manifest.Pair) bool {
	return b.hasFinal && b.final.Matches(p.Module, p.Artifact.Name)
}

// test runs category c for every artifact with a test project. Coverage
// categories run one artifact at a time in declared order since every run
// writes the shared accumulator.
func (b *Build) test(c Category) func(context.Context) error {
	return func(ctx context.Context) error {
		run := func(ctx context.Context, p manifest.Pair) error {
			b.logger.Debug("running tests", "category", c, "module", p.Module, "artifact", p.Artifact.Name)
			return b.toolchain.Test(ctx, b.TestSettings(c, p))
		}
		if !c.TracksCoverage() {
			return b.forEach(ctx, b.hasTestProject, run)
		}

		b.coverageMu.Lock()
		defer b.coverageMu.Unlock()
		for _, p := range b.manifest.Pairs() {
			if !b.hasTestProject(p) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := run(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}
}

func (b *Build) hasTestProject(p manifest.Pair) bool {
	return b.fs.FileExists(b.resolver.TestProject(p.Module, p.Artifact))
}
