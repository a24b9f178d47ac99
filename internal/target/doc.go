// SPDX-License-Identifier: MPL-2.0

// Package target executes named build targets over a dependency graph.
//
// An Engine holds a fixed set of registered targets. Run computes the
// depends-on closure of the requested targets, orders it, and runs each body
// at most once per Engine: completed targets are skipped on later calls, and
// the first failure is terminal for the Engine.
package target
