package bearcheck

import (
	"context"
	"fmt"
	"reflect"
)

// Invoke is the call shape shared with the harness: positional `any` args
// in, `any` results out. Declared as an alias so wrapped invokers plug into
// any package using the same shape without an import in either direction.
type Invoke = func(ctx context.Context, args []any) ([]any, error)

// Wrap returns an invoker that validates args against fn's declared
// parameter types with checker before calling fn. The wrapped invoker has
// the same call shape and side effects as calling fn directly; on a
// mismatch it returns a *Violation instead of calling.
//
// Wrap is composable and independent of any host framework: callers decide
// when and whether to install the result.
func Wrap(name string, fn any, checker Checker) (Invoke, error) {
	if fn == nil {
		return nil, fmt.Errorf("bearcheck: wrapping %q: nil callable", name)
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("bearcheck: wrapping %q: %s is not a func", name, ft)
	}

	return func(ctx context.Context, args []any) ([]any, error) {
		if err := checker.CheckArgs(name, ft, args); err != nil {
			return nil, err
		}
		return call(fv, args)
	}, nil
}

// call invokes fn with args converted to reflect values. A panic inside the
// call (or from reflect itself) is recovered into an error so the caller's
// run is never torn down by a single callable.
func call(fn reflect.Value, args []any) (results []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("bearcheck: call panicked: %v", r)
		}
	}()

	ft := fn.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(paramType(ft, i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	out := fn.Call(in)
	results = make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}
