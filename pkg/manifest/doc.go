// SPDX-License-Identifier: MPL-2.0

// Package manifest models the declared build manifest of a repository: the
// modules at its top level and the artifacts each module produces.
//
// A manifest is loaded once from build.cue (validated against an embedded CUE
// schema) or build.toml, and is immutable afterwards. The package also owns
// the on-disk path convention for source and test projects and the selection
// of the single artifact at which aggregated coverage output is finalized.
package manifest
