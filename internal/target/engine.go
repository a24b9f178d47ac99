// SPDX-License-Identifier: MPL-2.0

package target

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudtek/smartbuild/internal/dag"
)

var (
	// ErrDuplicateTarget is returned when a target name is registered twice.
	ErrDuplicateTarget = errors.New("duplicate target")
	// ErrNoTargets is returned when nothing was requested and no default is set.
	ErrNoTargets = errors.New("no targets requested")
	// ErrTargetFailed is the sentinel error wrapped by TargetError.
	ErrTargetFailed = errors.New("target failed")
)

type (
	// Body is the work of a target.
	Body func(ctx context.Context) error

	// Target is a named unit of work with dependency and ordering edges.
	Target struct {
		Name        string
		Description string
		// DependsOn names targets that are scheduled with this one and
		// complete before it.
		DependsOn []string
		// Before names targets this one runs ahead of when both are scheduled.
		Before []string
		// Body may be nil for grouping targets.
		Body Body
	}

	// TargetError is returned by Run when a target body fails.
	TargetError struct {
		Target string
		Err    error
	}

	// Engine runs registered targets in dependency order. It is safe for
	// concurrent use; concurrent Run calls are serialized.
	Engine struct {
		mu            sync.Mutex
		graph         *dag.Graph
		targets       map[string]Target
		states        map[string]State
		failure       *TargetError
		defaultTarget string
		onStart       func(string)
		onFinish      func(string, time.Duration, error)
		onSkip        func(string)
		now           func() time.Time
	}
)

// Error implements the error interface.
func (e *TargetError) Error() string {
	return fmt.Sprintf("target %s failed: %v", e.Target, e.Err)
}

// Unwrap returns the body error. errors.Is(err, ErrTargetFailed) also holds.
func (e *TargetError) Unwrap() []error {
	return []error{ErrTargetFailed, e.Err}
}

// New creates an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		graph:   dag.New(),
		targets: make(map[string]Target),
		states:  make(map[string]State),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a target. Edges may name targets registered later; Validate
// checks them once registration is done.
func (e *Engine) Register(t Target) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t.Name == "" {
		return errors.New("target name must be non-empty")
	}
	if _, ok := e.targets[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTarget, t.Name)
	}

	e.targets[t.Name] = t
	e.states[t.Name] = StatePending
	e.graph.AddNode(t.Name)
	for _, dep := range t.DependsOn {
		e.graph.DependsOn(t.Name, dep)
	}
	for _, next := range t.Before {
		e.graph.RunBefore(t.Name, next)
	}
	return nil
}

// Validate checks that every edge names a registered target and that the
// graph is acyclic.
func (e *Engine) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Validate()
}

// Targets returns every registered target in registration order.
func (e *Engine) Targets() []Target {
	e.mu.Lock()
	defer e.mu.Unlock()

	nodes := e.graph.Nodes()
	out := make([]Target, 0, len(nodes))
	for _, name := range nodes {
		out = append(out, e.targets[name])
	}
	return out
}

// State returns the state of a target, StatePending for unknown names.
func (e *Engine) State(name string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[name]
}

// Plan returns the execution order of names and their dependencies without
// running anything. Completed targets are included.
func (e *Engine) Plan(names ...string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan(names)
}

func (e *Engine) plan(names []string) ([]string, error) {
	if len(names) == 0 {
		if e.defaultTarget == "" {
			return nil, ErrNoTargets
		}
		names = []string{e.defaultTarget}
	}
	closure, err := e.graph.Closure(names...)
	if err != nil {
		return nil, err
	}
	return e.graph.Order(closure)
}

// Run executes names and everything they depend on. Each target body runs at
// most once per Engine. The first failing body stops the run and its
// *TargetError is returned from this and every later call.
func (e *Engine) Run(ctx context.Context, names ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failure != nil {
		return e.failure
	}

	order, err := e.plan(names)
	if err != nil {
		return err
	}

	for _, name := range order {
		if e.states[name] == StateCompleted {
			if e.onSkip != nil {
				e.onSkip(name)
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled before target %s: %w", name, err)
		}
		if err := e.execute(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) execute(ctx context.Context, name string) error {
	if err := e.transition(name, StateRunning); err != nil {
		return err
	}
	if e.onStart != nil {
		e.onStart(name)
	}

	start := e.now()
	var bodyErr error
	if body := e.targets[name].Body; body != nil {
		bodyErr = body(ctx)
	}
	elapsed := e.now().Sub(start)

	if e.onFinish != nil {
		e.onFinish(name, elapsed, bodyErr)
	}

	if bodyErr != nil {
		if err := e.transition(name, StateFailed); err != nil {
			return err
		}
		e.failure = &TargetError{Target: name, Err: bodyErr}
		return e.failure
	}
	return e.transition(name, StateCompleted)
}

func (e *Engine) transition(name string, to State) error {
	from := e.states[name]
	if !canTransition(from, to) {
		return &InvalidTransitionError{Target: name, From: from, To: to}
	}
	e.states[name] = to
	return nil
}
