// SPDX-License-Identifier: MPL-2.0

// Package build wires a manifest to the target engine. It registers the fixed
// target set (Clean, Restore, Compile, Pack, Publish, Push and the five test
// categories) and implements each body as a traversal of the manifest's
// artifacts that issues one toolchain call per matching artifact.
package build
