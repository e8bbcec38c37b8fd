package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Outcome classifies a test's result. Failed means the test (or a
// type-check guarding it) rejected the run; Errored means the harness could
// not execute it cleanly, e.g. a reflect dispatch panic or a missing
// fixture.
type Outcome int

const (
	OutcomePassed Outcome = iota
	OutcomeFailed
	OutcomeErrored
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	case OutcomeErrored:
		return "errored"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is one test's outcome.
type Result struct {
	Test    string
	Outcome Outcome
	Message string
}

// Run fires collection hooks, then executes every collected test in order,
// resolving fixtures on demand (cached for the duration of the run) and
// running accumulated teardowns LIFO at the end.
func (h *Harness) Run(ctx context.Context) []Result {
	for _, hook := range h.collectionHooks {
		hook(h.tests)
	}

	values := make(map[string]any)
	var teardowns []func()
	defer h.runTeardowns(&teardowns)

	results := make([]Result, 0, len(h.tests))
	for _, t := range h.tests {
		res := h.runTest(ctx, t, values, &teardowns)
		h.logger.Debug("test finished", "test", t.Name, "outcome", res.Outcome.String())
		results = append(results, res)
	}
	return results
}

func (h *Harness) runTest(ctx context.Context, t *Test, values map[string]any, teardowns *[]func()) Result {
	args := make([]any, 0, len(t.Fixtures))
	for _, name := range t.Fixtures {
		v, err := h.resolveFixture(ctx, name, values, teardowns, make(map[string]bool))
		if err != nil {
			return Result{Test: t.Name, Outcome: OutcomeErrored, Message: err.Error()}
		}
		args = append(args, v)
	}

	for _, hook := range h.testCallHooks {
		if err := hook(t, args); err != nil {
			return Result{Test: t.Name, Outcome: OutcomeFailed, Message: err.Error()}
		}
	}

	out, err := t.invoke(ctx, args)
	if err != nil {
		var callErr *CallError
		if errors.As(err, &callErr) {
			return Result{Test: t.Name, Outcome: OutcomeErrored, Message: err.Error()}
		}
		return Result{Test: t.Name, Outcome: OutcomeFailed, Message: err.Error()}
	}

	// A test signalling failure through its own logic returns a non-nil
	// error as its last result.
	if len(out) > 0 {
		if resErr, ok := out[len(out)-1].(error); ok && resErr != nil {
			return Result{Test: t.Name, Outcome: OutcomeFailed, Message: resErr.Error()}
		}
	}
	return Result{Test: t.Name, Outcome: OutcomePassed}
}

// resolveFixture produces the named fixture's value, invoking it at most
// once per run. Fixture setup hooks fire at a fixture's first-ever setup.
func (h *Harness) resolveFixture(ctx context.Context, name string, values map[string]any, teardowns *[]func(), resolving map[string]bool) (any, error) {
	if v, ok := values[name]; ok {
		return v, nil
	}
	fx, ok := h.fixtures[name]
	if !ok {
		return nil, fmt.Errorf("harness: unknown fixture %q", name)
	}
	if resolving[name] {
		return nil, fmt.Errorf("harness: fixture dependency cycle at %q", name)
	}
	resolving[name] = true

	if !fx.resolved {
		for _, hook := range h.fixtureHooks {
			hook(fx)
		}
		fx.resolved = true
	}

	args := make([]any, 0, len(fx.Fixtures))
	for _, dep := range fx.Fixtures {
		v, err := h.resolveFixture(ctx, dep, values, teardowns, resolving)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	out, err := fx.invoke(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("harness: fixture %q: %w", name, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("harness: fixture %q produced no value", name)
	}

	if fx.HasTeardown() {
		if td, ok := out[len(out)-1].(func()); ok && td != nil {
			*teardowns = append(*teardowns, td)
		}
	}

	value := out[0]
	values[name] = value
	return value, nil
}

func (h *Harness) runTeardowns(teardowns *[]func()) {
	tds := *teardowns
	for i := len(tds) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil {
					h.logger.Warn("fixture teardown panicked", "panic", fmt.Sprint(r))
				}
			}()
			tds[i]()
		}()
	}
}

func funcValue(name string, fn any) (reflect.Value, error) {
	if fn == nil {
		return reflect.Value{}, fmt.Errorf("harness: %q: nil function", name)
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("harness: %q: %T is not a func", name, fn)
	}
	return fv, nil
}
