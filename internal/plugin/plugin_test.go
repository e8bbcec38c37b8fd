package plugin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/beartype/bearcheck/internal/bearcheck"
	"github.com/beartype/bearcheck/internal/config"
	"github.com/beartype/bearcheck/internal/harness"
)

// capturedLogger returns a logger writing text records into the buffer so
// tests can assert on emitted warnings.
func capturedLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func mustTest(t *testing.T, name string, fn any, fixtures ...string) *harness.Test {
	t.Helper()
	item, err := harness.NewTest(name, fn, fixtures...)
	if err != nil {
		t.Fatal(err)
	}
	return item
}

func mustFixture(t *testing.T, name string, fn any, fixtures ...string) *harness.Fixture {
	t.Helper()
	fx, err := harness.NewFixture(name, fn, fixtures...)
	if err != nil {
		t.Fatal(err)
	}
	return fx
}

func resultFor(t *testing.T, results []harness.Result, name string) harness.Result {
	t.Helper()
	for _, r := range results {
		if r.Test == name {
			return r
		}
	}
	t.Fatalf("no result for %q in %v", name, results)
	return harness.Result{}
}

func TestCheckedTest_WrongArgumentFails(t *testing.T) {
	h := harness.New(nil)
	if err := h.AddFixture(mustFixture(t, "value", func() any { return "not an int" })); err != nil {
		t.Fatal(err)
	}
	h.AddTest(mustTest(t, "t.int", func(n int) {}, "value"))

	Install(h, &config.Effective{CheckTests: true}, nil, nil)

	res := resultFor(t, h.Run(context.Background()), "t.int")
	if res.Outcome != harness.OutcomeFailed {
		t.Fatalf("outcome = %s, want failed (not errored)", res.Outcome)
	}
	if !strings.Contains(res.Message, "parameter 0 declared int, got string") {
		t.Errorf("message %q should name the parameter and types", res.Message)
	}
}

func TestUncheckedTest_WrongArgumentErrors(t *testing.T) {
	// With test checking off the same mismatch stays a reflect panic,
	// classified as errored.
	h := harness.New(nil)
	if err := h.AddFixture(mustFixture(t, "value", func() any { return "not an int" })); err != nil {
		t.Fatal(err)
	}
	h.AddTest(mustTest(t, "t.int", func(n int) {}, "value"))

	Install(h, &config.Effective{}, nil, nil)

	res := resultFor(t, h.Run(context.Background()), "t.int")
	if res.Outcome != harness.OutcomeErrored {
		t.Errorf("outcome = %s, want errored", res.Outcome)
	}
}

func TestCheckedFixture_ViolationFailsRequestingTest(t *testing.T) {
	h := harness.New(nil)

	// Fixture declares it provides a string but returns an int.
	fx := mustFixture(t, "greeting", func() any { return 42 })
	fx.Provides = stringType()
	if err := h.AddFixture(fx); err != nil {
		t.Fatal(err)
	}
	h.AddTest(mustTest(t, "t.greet", func(v any) {}, "greeting"))

	Install(h, &config.Effective{CheckFixtures: true}, nil, nil)

	res := resultFor(t, h.Run(context.Background()), "t.greet")
	if res.Outcome != harness.OutcomeFailed {
		t.Fatalf("outcome = %s, want failed (fixture violations are test failures, not setup errors)", res.Outcome)
	}
	if !strings.Contains(res.Message, `"greeting"`) {
		t.Errorf("message %q should name the fixture", res.Message)
	}
	if !strings.Contains(res.Message, "result declared string, got int") {
		t.Errorf("message %q should carry the violation", res.Message)
	}
}

func TestCheckedFixture_ValidValuePasses(t *testing.T) {
	h := harness.New(nil)
	fx := mustFixture(t, "greeting", func() any { return "hello" })
	fx.Provides = stringType()
	if err := h.AddFixture(fx); err != nil {
		t.Fatal(err)
	}
	var got string
	h.AddTest(mustTest(t, "t.greet", func(v any) { got = v.(string) }, "greeting"))

	Install(h, &config.Effective{CheckFixtures: true}, nil, nil)

	res := resultFor(t, h.Run(context.Background()), "t.greet")
	if res.Outcome != harness.OutcomePassed {
		t.Fatalf("outcome = %s: %s", res.Outcome, res.Message)
	}
	if got != "hello" {
		t.Errorf("fixture value = %q", got)
	}
}

func TestTeardownFixture_SkippedWithWarning(t *testing.T) {
	h := harness.New(nil)
	torndown := false
	fx := mustFixture(t, "conn", func() (string, func()) {
		return "db", func() { torndown = true }
	})
	if err := h.AddFixture(fx); err != nil {
		t.Fatal(err)
	}
	var got string
	h.AddTest(mustTest(t, "t.conn", func(s string) { got = s }, "conn"))

	var buf bytes.Buffer
	Install(h, &config.Effective{CheckFixtures: true}, nil, capturedLogger(&buf))

	res := resultFor(t, h.Run(context.Background()), "t.conn")
	if res.Outcome != harness.OutcomePassed {
		t.Fatalf("test using an undecorated teardown fixture should still run: %s", res.Message)
	}
	if got != "db" || !torndown {
		t.Errorf("fixture behavior changed: got=%q torndown=%v", got, torndown)
	}
	logged := buf.String()
	if !strings.Contains(logged, "teardown fixtures are unsupported") || !strings.Contains(logged, "conn") {
		t.Errorf("expected a warning naming the fixture, got %q", logged)
	}
}

func TestFixtureCheckingOff_NoSentinelScan(t *testing.T) {
	h := harness.New(nil)
	if err := h.AddFixture(mustFixture(t, "v", func() int { return 1 })); err != nil {
		t.Fatal(err)
	}
	h.AddTest(mustTest(t, "t", func(n int) {}, "v"))

	Install(h, &config.Effective{}, nil, nil)

	res := resultFor(t, h.Run(context.Background()), "t")
	if res.Outcome != harness.OutcomePassed {
		t.Errorf("outcome = %s: %s", res.Outcome, res.Message)
	}
}

func TestPackageDecoration(t *testing.T) {
	h := harness.New(nil)
	cfg := &config.Effective{
		IncludePackages: []string{"pkg.sub"},
		ExcludePackages: []string{"pkg.sub.bad"},
	}
	Install(h, cfg, nil, nil)

	good, err := harness.NewCallable("pkg.sub.good.Frob", func(n int) int { return n })
	if err != nil {
		t.Fatal(err)
	}
	bad, err := harness.NewCallable("pkg.sub.bad.Frob", func(n int) int { return n })
	if err != nil {
		t.Fatal(err)
	}
	other, err := harness.NewCallable("pkg.other.Frob", func(n int) int { return n })
	if err != nil {
		t.Fatal(err)
	}

	reg := h.Registry()
	for name, c := range map[string]*harness.Callable{
		"pkg.sub.good": good, "pkg.sub.bad": bad, "pkg.other": other,
	} {
		if err := reg.Register(harness.NewPackage(name, c)); err != nil {
			t.Fatal(err)
		}
	}

	if !good.Checked() {
		t.Error("pkg.sub.good should be decorated (include prefix match)")
	}
	if bad.Checked() {
		t.Error("pkg.sub.bad must not be decorated (exclude wins)")
	}
	if other.Checked() {
		t.Error("pkg.other must not be decorated (no include match)")
	}

	// The decorated callable reports violations instead of panicking.
	_, err = good.Invoker()(context.Background(), []any{"nope"})
	var v *bearcheck.Violation
	if !errors.As(err, &v) {
		t.Errorf("decorated callable returned %v, want *Violation", err)
	}

	// The undecorated one still panics (recovered as a CallError).
	_, err = bad.Invoker()(context.Background(), []any{"nope"})
	var ce *harness.CallError
	if !errors.As(err, &ce) {
		t.Errorf("undecorated callable returned %v, want *CallError", err)
	}
}

func TestPackagesLoadedBeforeInstall_WarnedNotWrapped(t *testing.T) {
	h := harness.New(nil)
	early, err := harness.NewCallable("pkg.early.F", func(n int) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Registry().Register(harness.NewPackage("pkg.early", early)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	Install(h, &config.Effective{IncludePackages: []string{"pkg"}}, nil, capturedLogger(&buf))

	if early.Checked() {
		t.Error("pre-registered package must not be retroactively wrapped")
	}
	logged := buf.String()
	if !strings.Contains(logged, "previously registered packages not checkable") ||
		!strings.Contains(logged, "pkg.early") {
		t.Errorf("expected warning naming pkg.early, got %q", logged)
	}
}

func TestWildcardWarning_SkipsIgnorableRoots(t *testing.T) {
	h := harness.New(nil)
	if err := h.Registry().Register(harness.NewPackage("harness.internal")); err != nil {
		t.Fatal(err)
	}
	if err := h.Registry().Register(harness.NewPackage("user.pkg")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	Install(h, &config.Effective{IncludePackages: []string{"*"}}, nil, capturedLogger(&buf))

	logged := buf.String()
	if strings.Contains(logged, "harness.internal") {
		t.Errorf("ignorable root should be omitted from the warning: %q", logged)
	}
	if !strings.Contains(logged, "user.pkg") {
		t.Errorf("user package should be warned about: %q", logged)
	}
}

func TestDecoration_IsOnceOnly(t *testing.T) {
	h := harness.New(nil)
	h.AddTest(mustTest(t, "t", func() {}))

	calls := 0
	Install(h, &config.Effective{CheckTests: true}, &countingChecker{calls: &calls}, nil)

	// Two runs fire collection twice; the second pass must see the test
	// already checked and leave it alone. A double-wrapped test would
	// check its arguments twice on the second run.
	h.Run(context.Background())
	h.Run(context.Background())

	if calls != 2 {
		t.Errorf("checker ran %d times across two runs, want 2 (one per call)", calls)
	}
}

// countingChecker delegates to the reference checker, counting CheckArgs
// calls.
type countingChecker struct {
	calls *int
}

func (c *countingChecker) CheckArgs(name string, fn reflect.Type, args []any) error {
	*c.calls++
	return bearcheck.New().CheckArgs(name, fn, args)
}

func (c *countingChecker) CheckResult(name string, declared reflect.Type, value any) error {
	return bearcheck.New().CheckResult(name, declared, value)
}

func stringType() reflect.Type { return reflect.TypeOf("") }
