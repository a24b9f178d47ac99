// SPDX-License-Identifier: MPL-2.0

package manifest

import "github.com/cloudtek/smartbuild/pkg/types"

// FinalArtifact identifies the one (module, artifact) pair whose coverage
// invocation converts the accumulator into the final report.
type FinalArtifact struct {
	Module   string
	Artifact string
}

// Matches reports whether the pair is the final artifact.
func (f FinalArtifact) Matches(module, artifact string) bool {
	return f.Module == module && f.Artifact == artifact
}

// String returns "module/artifact".
func (f FinalArtifact) String() string {
	return f.Module + "/" + f.Artifact
}

// SelectFinal picks the final artifact. Among modules with at least one
// existing test project it takes the greatest module name; within that module
// it takes the last artifact, in declared order, whose test project exists.
// The module rule is by name and the artifact rule is by position.
//
// ok is false when no artifact anywhere has a test project, or when module
// names repeat so the greatest name is ambiguous. Coverage is then merged on
// every invocation and never finalized.
func SelectFinal(m *Manifest, r Resolver, exists func(types.FilesystemPath) bool) (final FinalArtifact, ok bool) {
	seen := make(map[string]bool, len(m.Modules))
	for _, mod := range m.Modules {
		if seen[mod.Name] {
			return FinalArtifact{}, false
		}
		seen[mod.Name] = true
	}

	for _, mod := range m.Modules {
		last, found := lastWithTests(mod, r, exists)
		if !found {
			continue
		}
		if !ok || mod.Name > final.Module {
			final = FinalArtifact{Module: mod.Name, Artifact: last.Name}
			ok = true
		}
	}
	return final, ok
}

func lastWithTests(mod Module, r Resolver, exists func(types.FilesystemPath) bool) (Artifact, bool) {
	for i := len(mod.Artifacts) - 1; i >= 0; i-- {
		a := mod.Artifacts[i]
		if exists(r.TestProject(mod.Name, a)) {
			return a, true
		}
	}
	return Artifact{}, false
}
