// SPDX-License-Identifier: MPL-2.0

// Package toolchain drives the .NET CLI.
//
// Toolchain is the contract the build targets depend on: one method per
// dotnet verb, each taking a settings struct whose Args method renders the
// exact command line. DotNet implements it by running the dotnet binary.
// Only Restore is retried, and only on transient network failures; every
// other verb fails on its first non-zero exit.
package toolchain
