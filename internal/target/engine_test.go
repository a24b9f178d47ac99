// SPDX-License-Identifier: MPL-2.0

package target

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

// recorder collects body invocations in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) body(name string) Body {
	return func(context.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, name)
		return nil
	}
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// newBuildEngine registers the smartbuild target shape with recording bodies.
func newBuildEngine(t *testing.T, rec *recorder, fail map[string]error, opts ...Option) *Engine {
	t.Helper()

	e := New(append([]Option{WithDefault("Compile")}, opts...)...)
	targets := []Target{
		{Name: "Clean", Before: []string{"Restore"}},
		{Name: "Restore", DependsOn: []string{"Clean"}},
		{Name: "Compile", DependsOn: []string{"Restore"}},
		{Name: "Pack", DependsOn: []string{"Compile"}},
		{Name: "Publish", DependsOn: []string{"Compile"}},
		{Name: "Push", DependsOn: []string{"Pack"}},
		{Name: "UnitTests", DependsOn: []string{"Clean"}},
		{Name: "SmokeTests", DependsOn: []string{"Clean"}},
	}
	for _, tgt := range targets {
		name := tgt.Name
		tgt.Body = rec.body(name)
		if err, ok := fail[name]; ok {
			inner := tgt.Body
			tgt.Body = func(ctx context.Context) error {
				_ = inner(ctx)
				return err
			}
		}
		if err := e.Register(tgt); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return e
}

func TestRun_OrderAndDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		targets []string
		want    []string
	}{
		{"default is compile", nil, []string{"Clean", "Restore", "Compile"}},
		{"push", []string{"Push"}, []string{"Clean", "Restore", "Compile", "Pack", "Push"}},
		{"tests only clean", []string{"UnitTests"}, []string{"Clean", "UnitTests"}},
		{"clean once across requested targets", []string{"UnitTests", "Pack", "SmokeTests"},
			[]string{"Clean", "Restore", "Compile", "Pack", "UnitTests", "SmokeTests"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &recorder{}
			e := newBuildEngine(t, rec, nil)

			if err := e.Run(context.Background(), tt.targets...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got := rec.got(); !slices.Equal(got, tt.want) {
				t.Errorf("Run() executed %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_CleanExactlyOnceBeforeRestore(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	e := newBuildEngine(t, rec, nil)

	if err := e.Run(context.Background(), "SmokeTests", "Publish", "UnitTests", "Push"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	calls := rec.got()
	cleans := 0
	for _, c := range calls {
		if c == "Clean" {
			cleans++
		}
	}
	if cleans != 1 {
		t.Errorf("Clean ran %d times in %v", cleans, calls)
	}
	if slices.Index(calls, "Clean") > slices.Index(calls, "Restore") {
		t.Errorf("Clean ran after Restore in %v", calls)
	}
}

func TestRun_MemoizedAcrossCalls(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	var skipped []string
	e := newBuildEngine(t, rec, nil, WithOnSkip(func(name string) { skipped = append(skipped, name) }))
	ctx := context.Background()

	if err := e.Run(ctx, "Compile"); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(ctx, "Pack"); err != nil {
		t.Fatal(err)
	}
	want := []string{"Clean", "Restore", "Compile", "Pack"}
	if got := rec.got(); !slices.Equal(got, want) {
		t.Errorf("executed %v, want %v", got, want)
	}
	if !slices.Equal(skipped, []string{"Clean", "Restore", "Compile"}) {
		t.Errorf("skipped %v", skipped)
	}
	if e.State("Pack") != StateCompleted || e.State("Push") != StatePending {
		t.Errorf("states Pack=%s Push=%s", e.State("Pack"), e.State("Push"))
	}
}

func TestRun_FailureAborts(t *testing.T) {
	t.Parallel()
	boom := errors.New("restore exited with code 1")
	rec := &recorder{}
	e := newBuildEngine(t, rec, map[string]error{"Restore": boom})
	ctx := context.Background()

	err := e.Run(ctx, "Pack")
	var targetErr *TargetError
	if !errors.As(err, &targetErr) {
		t.Fatalf("Run() error = %v, want *TargetError", err)
	}
	if targetErr.Target != "Restore" || !errors.Is(err, boom) || !errors.Is(err, ErrTargetFailed) {
		t.Errorf("TargetError = %+v", targetErr)
	}
	if got := rec.got(); !slices.Equal(got, []string{"Clean", "Restore"}) {
		t.Errorf("executed %v, want [Clean Restore]", got)
	}
	if e.State("Restore") != StateFailed || e.State("Compile") != StatePending {
		t.Errorf("states Restore=%s Compile=%s", e.State("Restore"), e.State("Compile"))
	}

	// Later runs fail fast without executing anything, even unrelated targets.
	if err := e.Run(ctx, "UnitTests"); !errors.Is(err, boom) {
		t.Errorf("second Run() error = %v, want recorded failure", err)
	}
	if got := rec.got(); len(got) != 2 {
		t.Errorf("second Run() executed bodies: %v", got)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	e := newBuildEngine(t, rec, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx, "Compile")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(rec.got()) != 0 {
		t.Errorf("executed %v after cancel", rec.got())
	}
}

func TestRun_UnknownTarget(t *testing.T) {
	t.Parallel()
	e := newBuildEngine(t, &recorder{}, nil)
	if err := e.Run(context.Background(), "Deploy"); err == nil {
		t.Fatal("Run(Deploy) error = nil")
	}
}

func TestPlan_DoesNotExecute(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	e := newBuildEngine(t, rec, nil)

	order, err := e.Plan("Push", "UnitTests")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := []string{"Clean", "Restore", "Compile", "Pack", "Push", "UnitTests"}
	if !slices.Equal(order, want) {
		t.Errorf("Plan() = %v, want %v", order, want)
	}
	if len(rec.got()) != 0 {
		t.Errorf("Plan() executed %v", rec.got())
	}
	if _, err := New().Plan(); !errors.Is(err, ErrNoTargets) {
		t.Errorf("Plan() without default error = %v, want ErrNoTargets", err)
	}
}

func TestHooks(t *testing.T) {
	t.Parallel()

	tick := time.Unix(0, 0)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	var started []string
	finished := make(map[string]time.Duration)
	var failedWith error
	boom := errors.New("boom")

	e := newBuildEngine(t, &recorder{}, map[string]error{"Compile": boom},
		withClock(clock),
		WithOnStart(func(name string) { started = append(started, name) }),
		WithOnFinish(func(name string, d time.Duration, err error) {
			finished[name] = d
			if err != nil {
				failedWith = err
			}
		}),
	)

	_ = e.Run(context.Background())
	if !slices.Equal(started, []string{"Clean", "Restore", "Compile"}) {
		t.Errorf("started = %v", started)
	}
	if finished["Clean"] != time.Second {
		t.Errorf("Clean duration = %v, want 1s", finished["Clean"])
	}
	if !errors.Is(failedWith, boom) {
		t.Errorf("OnFinish error = %v, want boom", failedWith)
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()
	e := New()
	if err := e.Register(Target{Name: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := e.Register(Target{Name: "A"}); !errors.Is(err, ErrDuplicateTarget) {
		t.Errorf("duplicate Register() error = %v", err)
	}
	if err := e.Register(Target{}); err == nil {
		t.Error("Register() with empty name succeeded")
	}
	if err := e.Register(Target{Name: "B", DependsOn: []string{"Missing"}}); err != nil {
		t.Fatal(err)
	}
	if err := e.Validate(); err == nil {
		t.Error("Validate() accepted a dangling dependency")
	}
	if got := e.Targets(); len(got) != 2 || got[0].Name != "A" {
		t.Errorf("Targets() = %v", got)
	}
}

func TestRun_NilBody(t *testing.T) {
	t.Parallel()
	e := New()
	if err := e.Register(Target{Name: "Group"}); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background(), "Group"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.State("Group") != StateCompleted {
		t.Errorf("State = %s", e.State("Group"))
	}
}
