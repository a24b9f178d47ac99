// SPDX-License-Identifier: MPL-2.0

package target

import (
	"errors"
	"testing"
)

func TestState_Validate(t *testing.T) {
	t.Parallel()

	for _, s := range []State{StatePending, StateRunning, StateCompleted, StateFailed} {
		if err := s.Validate(); err != nil {
			t.Errorf("%s.Validate() = %v", s, err)
		}
	}
	if err := State(9).Validate(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("State(9).Validate() = %v, want ErrInvalidState", err)
	}
	if State(9).String() != "unknown" {
		t.Errorf("State(9).String() = %q", State(9).String())
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to State
		want     bool
	}{
		{StatePending, StateRunning, true},
		{StateRunning, StateCompleted, true},
		{StateRunning, StateFailed, true},
		{StatePending, StateCompleted, false},
		{StatePending, StateFailed, false},
		{StateCompleted, StateRunning, false},
		{StateFailed, StateRunning, false},
		{StateCompleted, StateFailed, false},
	}
	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransition_Rejected(t *testing.T) {
	t.Parallel()

	e := New()
	if err := e.Register(Target{Name: "A"}); err != nil {
		t.Fatal(err)
	}
	err := e.transition("A", StateCompleted)
	var transErr *InvalidTransitionError
	if !errors.As(err, &transErr) || !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("transition() error = %v", err)
	}
	if transErr.From != StatePending || transErr.To != StateCompleted {
		t.Errorf("InvalidTransitionError = %+v", transErr)
	}
	if !StateFailed.IsTerminal() || StateRunning.IsTerminal() {
		t.Error("IsTerminal() wrong")
	}
}
