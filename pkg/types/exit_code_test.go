// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "success", value: ExitSuccess, wantValid: true},
		{name: "target failure", value: ExitTargetFailed, wantValid: true},
		{name: "configuration", value: ExitConfiguration, wantValid: true},
		{name: "upper bound", value: 255, wantValid: true},
		{name: "negative", value: -1, wantValid: false},
		{name: "above range", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Fatalf("ExitCode(%d).Validate() error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if !tt.wantValid && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
			}
		})
	}
}

func TestExitCodeIsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitSuccess.IsSuccess() {
		t.Error("ExitSuccess.IsSuccess() = false")
	}
	if ExitTargetFailed.IsSuccess() {
		t.Error("ExitTargetFailed.IsSuccess() = true")
	}
	if got := ExitConfiguration.String(); got != "2" {
		t.Errorf("String() = %q, want %q", got, "2")
	}
}
