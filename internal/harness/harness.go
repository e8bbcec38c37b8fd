// Package harness models the consumed contract of a reflective test
// harness: tests and fixtures dispatched through `any`-typed reflective
// calls, plus the hook points a plugin registers against (collection,
// fixture setup, package load, test call). It carries just enough of a
// runner to exercise that contract; it is not a general test framework.
package harness

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Test is a collected test item. The runner resolves the requested fixtures
// by name, in order, and passes their values as the test's arguments. A
// test fails when its invoker returns a non-CallError error or when its
// last result is a non-nil error.
type Test struct {
	Name     string
	Fixtures []string

	fn      reflect.Value
	invoke  Invoke
	checked bool
}

// NewTest builds a test item around fn, which must be a func. The fixtures
// name the values to resolve as its positional arguments.
func NewTest(name string, fn any, fixtures ...string) (*Test, error) {
	fv, err := funcValue(name, fn)
	if err != nil {
		return nil, err
	}
	return &Test{
		Name:     name,
		Fixtures: fixtures,
		fn:       fv,
		invoke:   defaultInvoke(name, fv),
	}, nil
}

// Func returns the underlying test function.
func (t *Test) Func() any { return t.fn.Interface() }

// Invoker returns the current invoker for this test.
func (t *Test) Invoker() Invoke { return t.invoke }

// SetInvoker replaces how the runner dispatches this test and marks the
// test as checked so it is never wrapped twice.
func (t *Test) SetInvoker(inv Invoke) {
	t.invoke = inv
	t.checked = true
}

// Checked reports whether a plugin already replaced this test's invoker.
func (t *Test) Checked() bool { return t.checked }

// Fixture is a setup helper resolved by name. Its function's results supply
// the fixture value; a fixture whose last result is a niladic func() is a
// teardown fixture, with the func run after the tests of the current run.
type Fixture struct {
	Name string
	// Fixtures names dependency fixtures resolved as this fixture's args.
	Fixtures []string
	// Provides declares the produced value's type for fixtures whose
	// function returns `any`. Nil means the signature says it all.
	Provides reflect.Type

	fn       reflect.Value
	invoke   Invoke
	checked  bool
	resolved bool
}

// NewFixture builds a fixture around fn, which must be a func with at least
// one result.
func NewFixture(name string, fn any, fixtures ...string) (*Fixture, error) {
	fv, err := funcValue(name, fn)
	if err != nil {
		return nil, err
	}
	if fv.Type().NumOut() == 0 {
		return nil, fmt.Errorf("harness: fixture %q produces no value", name)
	}
	return &Fixture{
		Name:     name,
		Fixtures: fixtures,
		fn:       fv,
		invoke:   defaultInvoke(name, fv),
	}, nil
}

// Func returns the underlying fixture function.
func (f *Fixture) Func() any { return f.fn.Interface() }

// Invoker returns the current invoker for this fixture.
func (f *Fixture) Invoker() Invoke { return f.invoke }

// SetInvoker replaces how the runner dispatches this fixture and marks it
// as checked.
func (f *Fixture) SetInvoker(inv Invoke) {
	f.invoke = inv
	f.checked = true
}

// Checked reports whether a plugin already visited this fixture.
func (f *Fixture) Checked() bool { return f.checked }

// MarkChecked records a decoration decision without replacing the invoker
// (a plugin that decides to skip a fixture still decides only once).
func (f *Fixture) MarkChecked() { f.checked = true }

// HasTeardown reports whether the fixture's last result is a niladic
// func(), the shape the runner treats as a teardown step.
func (f *Fixture) HasTeardown() bool {
	ft := f.fn.Type()
	if ft.NumOut() < 2 {
		return false
	}
	last := ft.Out(ft.NumOut() - 1)
	return last.Kind() == reflect.Func && last.NumIn() == 0 && last.NumOut() == 0
}

// Hook callback shapes. Collection hooks see every collected test before
// the run; fixture hooks fire once per fixture at its first setup; test
// call hooks see the resolved args just before dispatch, and a returned
// error marks the test failed (not errored).
type (
	CollectionHook func(tests []*Test)
	FixtureHook    func(fx *Fixture)
	TestCallHook   func(t *Test, args []any) error
)

// Harness owns the collected tests, the fixtures, the package registry,
// and the registered hooks. It is single-threaded: all hook callbacks and
// invocations happen inline on the Run goroutine.
type Harness struct {
	tests    []*Test
	fixtures map[string]*Fixture
	registry *Registry
	logger   *slog.Logger

	collectionHooks []CollectionHook
	fixtureHooks    []FixtureHook
	testCallHooks   []TestCallHook
}

// New returns an empty harness logging through logger (slog.Default when
// nil).
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{
		fixtures: make(map[string]*Fixture),
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Registry returns the harness's package registry.
func (h *Harness) Registry() *Registry { return h.registry }

// AddTest collects a test item.
func (h *Harness) AddTest(t *Test) { h.tests = append(h.tests, t) }

// AddFixture registers a fixture; names are unique.
func (h *Harness) AddFixture(f *Fixture) error {
	if _, ok := h.fixtures[f.Name]; ok {
		return fmt.Errorf("harness: duplicate fixture %q", f.Name)
	}
	h.fixtures[f.Name] = f
	return nil
}

// OnCollection registers a collection hook.
func (h *Harness) OnCollection(hook CollectionHook) {
	h.collectionHooks = append(h.collectionHooks, hook)
}

// OnFixtureSetup registers a fixture setup hook.
func (h *Harness) OnFixtureSetup(hook FixtureHook) {
	h.fixtureHooks = append(h.fixtureHooks, hook)
}

// OnTestCall registers a test call hook.
func (h *Harness) OnTestCall(hook TestCallHook) {
	h.testCallHooks = append(h.testCallHooks, hook)
}
