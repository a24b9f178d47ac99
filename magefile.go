//go:build mage

// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "smartbuild"
	cmdPkg  = "github.com/cloudtek/smartbuild/cmd/smartbuild"
)

// Default target - build the binary
var Default = Build

// Build builds the smartbuild binary with version information.
func Build() error {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	ldflags := fmt.Sprintf("-s -w -X %[1]s.Version=%[2]s -X %[1]s.Commit=%[3]s -X %[1]s.BuildDate=%[4]s",
		cmdPkg, version, commit, time.Now().UTC().Format(time.RFC3339))

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", filepath.Join(binDir, binName), ".")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binDir)
}

// Test namespace for test commands
type Test mg.Namespace

// Unit runs the package tests.
func (Test) Unit() error {
	return sh.RunV("go", "test", "-race", "./internal/...", "./pkg/...", "./cmd/...")
}

// CLI runs the testscript CLI tests.
func (Test) CLI() error {
	return sh.RunV("go", "test", "./tests/cli/...")
}

// All runs every test suite.
func (Test) All() {
	mg.SerialDeps(Test.Unit, Test.CLI)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// Vet runs go vet
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint
func (Lint) Golangci() error {
	return sh.RunV("golangci-lint", "run", "--timeout=5m", "./...")
}

// QA runs all quality assurance checks
func QA() {
	mg.SerialDeps(Lint.Vet, Test.All, Build)
}
