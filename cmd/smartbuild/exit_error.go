// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/cloudtek/smartbuild/pkg/types"
)

// ExitError carries the process exit code of a run back to Execute:
// ExitTargetFailed when a target fails, ExitConfiguration for bad input.
// Err is what gets printed; a nil Err prints only the code.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("smartbuild exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
