// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedExec returns an ExecCommandFunc that records each invocation and
// runs the next shell script from scripts. The last script repeats.
func scriptedExec(scripts ...string) (ExecCommandFunc, func() [][]string) {
	var mu sync.Mutex
	var calls [][]string
	fn := func(ctx context.Context, name string, args ...string) *exec.Cmd {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, append([]string{name}, args...))
		script := scripts[min(len(calls)-1, len(scripts)-1)]
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
	return fn, func() [][]string {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}
}

func newTestDotNet(fn ExecCommandFunc, opts ...Option) (*DotNet, *bytes.Buffer) {
	var out bytes.Buffer
	base := []Option{
		WithBinary("/usr/bin/dotnet"),
		WithExecCommand(fn),
		WithOutput(&out, &out),
		WithRestoreRetry(3, time.Millisecond),
	}
	return NewDotNet(append(base, opts...)...), &out
}

func TestDotNet_PassesArgs(t *testing.T) {
	t.Parallel()

	fn, calls := scriptedExec("exit 0")
	d, _ := newTestDotNet(fn)

	if err := d.Build(context.Background(), BuildSettings{Project: "P.csproj", Configuration: "Release"}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got := calls()
	if len(got) != 1 {
		t.Fatalf("calls = %v", got)
	}
	want := "/usr/bin/dotnet build P.csproj --configuration Release --no-restore"
	if strings.Join(got[0], " ") != want {
		t.Errorf("command = %q, want %q", strings.Join(got[0], " "), want)
	}
}

func TestDotNet_NonZeroExit(t *testing.T) {
	t.Parallel()

	fn, calls := scriptedExec("echo 'error CS1002: ; expected' >&2; exit 1")
	d, out := newTestDotNet(fn)

	err := d.Build(context.Background(), BuildSettings{Project: "P.csproj"})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Build() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 1 || cmdErr.Operation != OpBuild {
		t.Errorf("CommandError = %+v", cmdErr)
	}
	if !strings.Contains(cmdErr.Output, "CS1002") || !strings.Contains(out.String(), "CS1002") {
		t.Errorf("output not captured: tail=%q streamed=%q", cmdErr.Output, out.String())
	}
	if !errors.Is(err, ErrCommandFailed) {
		t.Error("errors.Is(err, ErrCommandFailed) = false")
	}
	if len(calls()) != 1 {
		t.Errorf("build was retried: %d calls", len(calls()))
	}
}

func TestDotNet_RestoreRetriesTransient(t *testing.T) {
	t.Parallel()

	fn, calls := scriptedExec(
		"echo 'error NU1301: Unable to load the service index for source' >&2; exit 1",
		"exit 0",
	)
	d, _ := newTestDotNet(fn)

	if err := d.Restore(context.Background(), RestoreSettings{Project: "P.csproj"}); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if n := len(calls()); n != 2 {
		t.Errorf("restore ran %d times, want 2", n)
	}
}

func TestDotNet_RestoreDoesNotRetryPermanent(t *testing.T) {
	t.Parallel()

	fn, calls := scriptedExec("echo 'error MSB1009: Project file does not exist.' >&2; exit 1")
	d, _ := newTestDotNet(fn)

	if err := d.Restore(context.Background(), RestoreSettings{Project: "P.csproj"}); err == nil {
		t.Fatal("Restore() error = nil")
	}
	if n := len(calls()); n != 1 {
		t.Errorf("restore ran %d times, want 1", n)
	}
}

func TestDotNet_RestoreExhaustsRetries(t *testing.T) {
	t.Parallel()

	fn, calls := scriptedExec("echo 'Could not resolve host: api.nuget.org' >&2; exit 1")
	d, _ := newTestDotNet(fn)

	if err := d.Restore(context.Background(), RestoreSettings{Project: "P.csproj"}); err == nil {
		t.Fatal("Restore() error = nil")
	}
	if n := len(calls()); n != 3 {
		t.Errorf("restore ran %d times, want 3", n)
	}
}

func TestDotNet_PushRedactsKey(t *testing.T) {
	t.Parallel()

	fn, calls := scriptedExec("exit 1")
	d, _ := newTestDotNet(fn)

	err := d.Push(context.Background(), PushSettings{Package: "p.nupkg", Source: "https://feed", APIKey: "s3cr3t"})
	if err == nil {
		t.Fatal("Push() error = nil")
	}
	if strings.Contains(err.Error(), "s3cr3t") {
		t.Errorf("error leaks API key: %v", err)
	}
	if got := calls()[0]; got[len(got)-1] != "s3cr3t" {
		t.Errorf("command did not receive the key: %v", got)
	}
}

func TestDotNet_Observer(t *testing.T) {
	t.Parallel()

	fn, _ := scriptedExec("exit 0", "exit 2")
	var mu sync.Mutex
	var seen []string
	d, _ := newTestDotNet(fn, WithObserver(func(op Operation, _ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		status := "ok"
		if err != nil {
			status = "error"
		}
		seen = append(seen, op.String()+":"+status)
	}))

	_ = d.Pack(context.Background(), PackSettings{Project: "P.csproj"})
	_ = d.Test(context.Background(), TestSettings{Project: "P.Tests.csproj"})

	want := []string{"pack:ok", "test:error"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("observer saw %v, want %v", seen, want)
	}
}

func TestDotNet_BinaryMissing(t *testing.T) {
	t.Parallel()

	d := NewDotNet(WithBinary("/nonexistent/dotnet-smartbuild"), WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	err := d.Publish(context.Background(), PublishSettings{Project: "P.csproj"})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.ExitCode != -1 {
		t.Fatalf("Publish() error = %v, want CommandError with ExitCode -1", err)
	}
}

func TestTailBuffer(t *testing.T) {
	t.Parallel()

	tb := &tailBuffer{limit: 4}
	_, _ = tb.Write([]byte("abc"))
	_, _ = tb.Write([]byte("defg"))
	if got := tb.String(); got != "defg" {
		t.Errorf("tail = %q, want %q", got, "defg")
	}
}
