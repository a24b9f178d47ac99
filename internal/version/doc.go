// SPDX-License-Identifier: MPL-2.0

// Package version computes the version fields stamped into every build,
// pack and publish invocation. Fields are computed once per run.
package version
