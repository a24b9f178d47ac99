// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/cloudtek/smartbuild/internal/toolchain"
	"github.com/cloudtek/smartbuild/pkg/types"
)

type (
	// Call is one recorded toolchain invocation.
	Call struct {
		Op toolchain.Operation
		// Project is the project file, or the package file for push.
		Project types.FilesystemPath
		Args    []string
	}

	// Toolchain is a toolchain.Toolchain that records calls instead of
	// running anything. It is safe for concurrent use.
	Toolchain struct {
		mu    sync.Mutex
		calls []Call
		// Fail, when set, decides the result of each call after it is recorded.
		Fail func(Call) error
	}
)

var _ toolchain.Toolchain = (*Toolchain)(nil)

// Restore implements toolchain.Toolchain.
func (f *Toolchain) Restore(_ context.Context, s toolchain.RestoreSettings) error {
	return f.record(Call{Op: toolchain.OpRestore, Project: s.Project, Args: s.Args()})
}

// Build implements toolchain.Toolchain.
func (f *Toolchain) Build(_ context.Context, s toolchain.BuildSettings) error {
	return f.record(Call{Op: toolchain.OpBuild, Project: s.Project, Args: s.Args()})
}

// Pack implements toolchain.Toolchain.
func (f *Toolchain) Pack(_ context.Context, s toolchain.PackSettings) error {
	return f.record(Call{Op: toolchain.OpPack, Project: s.Project, Args: s.Args()})
}

// Publish implements toolchain.Toolchain.
func (f *Toolchain) Publish(_ context.Context, s toolchain.PublishSettings) error {
	return f.record(Call{Op: toolchain.OpPublish, Project: s.Project, Args: s.Args()})
}

// Push implements toolchain.Toolchain.
func (f *Toolchain) Push(_ context.Context, s toolchain.PushSettings) error {
	return f.record(Call{Op: toolchain.OpPush, Project: s.Package, Args: s.Args()})
}

// Test implements toolchain.Toolchain.
func (f *Toolchain) Test(_ context.Context, s toolchain.TestSettings) error {
	return f.record(Call{Op: toolchain.OpTest, Project: s.Project, Args: s.Args()})
}

func (f *Toolchain) record(c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	fail := f.Fail
	f.mu.Unlock()

	if fail != nil {
		return fail(c)
	}
	return nil
}

// Calls returns every recorded call in invocation order.
func (f *Toolchain) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsFor returns the recorded calls of one operation.
func (f *Toolchain) CallsFor(op toolchain.Operation) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns the operation of every recorded call in order.
func (f *Toolchain) Ops() []toolchain.Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]toolchain.Operation, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Op
	}
	return out
}
