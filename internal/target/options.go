// SPDX-License-Identifier: MPL-2.0

package target

import "time"

// Option configures an Engine.
type Option func(*Engine)

// WithDefault sets the target run when Run or Plan is called without names.
func WithDefault(name string) Option {
	return func(e *Engine) {
		e.defaultTarget = name
	}
}

// WithOnStart registers a hook called before each target body runs.
func WithOnStart(fn func(name string)) Option {
	return func(e *Engine) {
		e.onStart = fn
	}
}

// WithOnFinish registers a hook called after each target body returns.
// err is nil on success.
func WithOnFinish(fn func(name string, elapsed time.Duration, err error)) Option {
	return func(e *Engine) {
		e.onFinish = fn
	}
}

// WithOnSkip registers a hook called for targets skipped because they
// already completed in an earlier Run.
func WithOnSkip(fn func(name string)) Option {
	return func(e *Engine) {
		e.onSkip = fn
	}
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}
