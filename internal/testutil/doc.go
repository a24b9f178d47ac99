// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fakes and filesystem helpers for tests.
//
// Toolchain records every invocation instead of running dotnet, FS answers
// existence checks from a fixed set of paths, and MustWriteFile/WriteProjects
// lay out project trees on disk for tests that exercise the real filesystem.
package testutil
