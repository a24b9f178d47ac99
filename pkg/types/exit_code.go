// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is the status a toolchain process or the smartbuild binary exits with.
	// The zero value means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

const (
	// ExitSuccess is returned when every requested target completed.
	ExitSuccess ExitCode = 0
	// ExitTargetFailed is returned when a target body failed.
	ExitTargetFailed ExitCode = 1
	// ExitConfiguration is returned for configuration errors detected before any target ran.
	ExitConfiguration ExitCode = 2
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the exit code is zero.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal representation.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
