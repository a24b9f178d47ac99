// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// OpRestore identifies dotnet restore.
	OpRestore Operation = "restore"
	// OpBuild identifies dotnet build.
	OpBuild Operation = "build"
	// OpPack identifies dotnet pack.
	OpPack Operation = "pack"
	// OpPublish identifies dotnet publish.
	OpPublish Operation = "publish"
	// OpPush identifies dotnet nuget push.
	OpPush Operation = "push"
	// OpTest identifies dotnet test.
	OpTest Operation = "test"
)

var (
	// ErrToolchainNotFound is returned when the dotnet binary is not on PATH.
	ErrToolchainNotFound = errors.New("dotnet toolchain not found")
	// ErrCommandFailed is the sentinel error wrapped by CommandError.
	ErrCommandFailed = errors.New("toolchain command failed")
)

type (
	// Operation names a toolchain verb, used for logging and metrics labels.
	Operation string

	// Toolchain is the build surface the targets depend on.
	Toolchain interface {
		Restore(ctx context.Context, s RestoreSettings) error
		Build(ctx context.Context, s BuildSettings) error
		Pack(ctx context.Context, s PackSettings) error
		Publish(ctx context.Context, s PublishSettings) error
		Push(ctx context.Context, s PushSettings) error
		Test(ctx context.Context, s TestSettings) error
	}

	// CommandError is returned when a toolchain command exits non-zero or
	// cannot be started.
	CommandError struct {
		Operation Operation
		// Args is the rendered command line, secrets masked.
		Args []string
		// ExitCode is -1 when the process never ran.
		ExitCode int
		// Output is the tail of the combined output.
		Output string
		Err    error
	}
)

// String returns the operation name.
func (o Operation) String() string { return string(o) }

// Error implements the error interface.
func (e *CommandError) Error() string {
	cmd := "dotnet " + strings.Join(e.Args, " ")
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: %s: %v", e.Operation, cmd, e.Err)
	}
	return fmt.Sprintf("%s: %s: exit code %d", e.Operation, cmd, e.ExitCode)
}

// Unwrap returns ErrCommandFailed and the underlying error.
func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCommandFailed}
	}
	return []error{ErrCommandFailed, e.Err}
}
