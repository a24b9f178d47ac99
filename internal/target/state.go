// SPDX-License-Identifier: MPL-2.0

package target

import (
	"errors"
	"fmt"
)

const (
	// StatePending indicates the target has not started.
	StatePending State = iota
	// StateRunning indicates the target body is executing.
	StateRunning
	// StateCompleted is terminal: the body returned without error.
	StateCompleted
	// StateFailed is terminal: the body returned an error.
	StateFailed
)

var (
	// ErrInvalidState is returned when a State value is not one of the defined states.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition is the sentinel error wrapped by InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid state transition")
)

type (
	// State is the execution state of one target.
	State int32

	// InvalidStateError is returned when a State value is not recognized.
	InvalidStateError struct {
		Value State
	}

	// InvalidTransitionError is returned when a target would move between
	// states the lifecycle does not allow.
	InvalidTransitionError struct {
		Target string
		From   State
		To     State
	}
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Error implements the error interface for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state %d (valid: 0=pending, 1=running, 2=completed, 3=failed)", e.Value)
}

// Unwrap returns ErrInvalidState for errors.Is.
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// Validate returns nil if the State is one of the defined states.
func (s State) Validate() error {
	switch s {
	case StatePending, StateRunning, StateCompleted, StateFailed:
		return nil
	default:
		return &InvalidStateError{Value: s}
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("target %q: cannot move from %s to %s", e.Target, e.From, e.To)
}

// Unwrap returns ErrInvalidTransition for errors.Is.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// canTransition allows Pending -> Running -> Completed | Failed and nothing else.
func canTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateRunning
	case StateRunning:
		return to == StateCompleted || to == StateFailed
	default:
		return false
	}
}
