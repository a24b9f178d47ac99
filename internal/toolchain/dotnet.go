// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/cloudtek/smartbuild/pkg/types"
)

const (
	// DefaultBinary is the dotnet executable name looked up on PATH.
	DefaultBinary = "dotnet"

	// DefaultRestoreAttempts bounds restore retries on transient failures.
	DefaultRestoreAttempts = 3
	// DefaultRestoreBackoff is the first retry delay; it doubles per attempt.
	DefaultRestoreBackoff = 2 * time.Second

	outputTailSize = 4096
)

type (
	// ExecCommandFunc creates commands. Tests replace exec.CommandContext.
	ExecCommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

	// Observer is notified after every toolchain invocation.
	Observer func(op Operation, elapsed time.Duration, err error)

	// DotNet runs the dotnet CLI.
	DotNet struct {
		binary          types.FilesystemPath
		execCommand     ExecCommandFunc
		stdout          io.Writer
		stderr          io.Writer
		restoreAttempts int
		restoreBackoff  time.Duration
		observer        Observer
		// out serializes writes from concurrent invocations.
		out sync.Mutex
	}

	// Option configures DotNet.
	Option func(*DotNet)
)

// WithBinary sets the dotnet executable. Defaults to DefaultBinary on PATH.
func WithBinary(path types.FilesystemPath) Option {
	return func(d *DotNet) {
		d.binary = path
	}
}

// WithExecCommand sets a custom command factory.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(d *DotNet) {
		d.execCommand = fn
	}
}

// WithOutput sets where command output is streamed. Defaults to os.Stdout
// and os.Stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(d *DotNet) {
		d.stdout = stdout
		d.stderr = stderr
	}
}

// WithRestoreRetry sets the restore retry budget.
func WithRestoreRetry(attempts int, backoff time.Duration) Option {
	return func(d *DotNet) {
		d.restoreAttempts = max(attempts, 1)
		d.restoreBackoff = backoff
	}
}

// WithObserver registers a callback run after every invocation.
func WithObserver(fn Observer) Option {
	return func(d *DotNet) {
		d.observer = fn
	}
}

// NewDotNet creates a DotNet toolchain.
func NewDotNet(opts ...Option) *DotNet {
	d := &DotNet{
		binary:          DefaultBinary,
		execCommand:     exec.CommandContext,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		restoreAttempts: DefaultRestoreAttempts,
		restoreBackoff:  DefaultRestoreBackoff,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LookPath resolves the dotnet binary on PATH.
func LookPath() (types.FilesystemPath, error) {
	path, err := exec.LookPath(DefaultBinary)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrToolchainNotFound, err)
	}
	return types.FilesystemPath(path), nil
}

// Restore runs dotnet restore, retrying transient network failures.
func (d *DotNet) Restore(ctx context.Context, s RestoreSettings) error {
	return RetryWithBackoff(ctx, d.restoreAttempts, d.restoreBackoff, func(int) (bool, error) {
		err := d.run(ctx, OpRestore, s.Args(), s.Args())
		return IsTransientError(err), err
	})
}

// Build runs dotnet build.
func (d *DotNet) Build(ctx context.Context, s BuildSettings) error {
	return d.run(ctx, OpBuild, s.Args(), s.Args())
}

// Pack runs dotnet pack.
func (d *DotNet) Pack(ctx context.Context, s PackSettings) error {
	return d.run(ctx, OpPack, s.Args(), s.Args())
}

// Publish runs dotnet publish.
func (d *DotNet) Publish(ctx context.Context, s PublishSettings) error {
	return d.run(ctx, OpPublish, s.Args(), s.Args())
}

// Push runs dotnet nuget push. The API key never appears in errors.
func (d *DotNet) Push(ctx context.Context, s PushSettings) error {
	return d.run(ctx, OpPush, s.Args(), s.Redacted())
}

// Test runs dotnet test.
func (d *DotNet) Test(ctx context.Context, s TestSettings) error {
	return d.run(ctx, OpTest, s.Args(), s.Args())
}

// run executes one dotnet command, streaming output and keeping a tail of it
// for error reports and transient detection.
func (d *DotNet) run(ctx context.Context, op Operation, args, display []string) (err error) {
	start := time.Now()
	if d.observer != nil {
		defer func() { d.observer(op, time.Since(start), err) }()
	}

	tail := &tailBuffer{limit: outputTailSize}
	cmd := d.execCommand(ctx, string(d.binary), args...)
	cmd.Stdout = io.MultiWriter(d.lockedWriter(d.stdout), tail)
	cmd.Stderr = io.MultiWriter(d.lockedWriter(d.stderr), tail)

	runErr := cmd.Run()
	if runErr == nil {
		return nil
	}

	cmdErr := &CommandError{Operation: op, Args: display, ExitCode: -1, Output: tail.String(), Err: runErr}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	} else if errors.Is(runErr, exec.ErrNotFound) {
		cmdErr.Err = fmt.Errorf("%w: %w", ErrToolchainNotFound, runErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		cmdErr.Err = ctxErr
	}
	return cmdErr
}

func (d *DotNet) lockedWriter(w io.Writer) io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		d.out.Lock()
		defer d.out.Unlock()
		return w.Write(p)
	})
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
