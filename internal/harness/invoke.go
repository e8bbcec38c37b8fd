package harness

import (
	"context"
	"fmt"
	"reflect"
)

// Invoke is the call shape every harness callable is dispatched through:
// positional `any` args in, `any` results out. Plugins replace a callable's
// invoker to interpose on its calls.
type Invoke = func(ctx context.Context, args []any) ([]any, error)

// CallError reports a callable that panicked when invoked, typically a
// reflect dispatch with an argument of the wrong dynamic type. The runner
// classifies these as errored rather than failed.
type CallError struct {
	Callable string
	Panic    any
}

func (e *CallError) Error() string {
	return fmt.Sprintf("calling %q panicked: %v", e.Callable, e.Panic)
}

// defaultInvoke dispatches fn through reflection, recovering panics into a
// *CallError so one bad call cannot tear down the run.
func defaultInvoke(name string, fn reflect.Value) Invoke {
	return func(_ context.Context, args []any) (results []any, err error) {
		defer func() {
			if r := recover(); r != nil {
				results = nil
				err = &CallError{Callable: name, Panic: r}
			}
		}()

		ft := fn.Type()
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			if arg == nil {
				in[i] = reflect.Zero(argType(ft, i))
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
}

// argType resolves the declared type of argument position i, falling back
// to `any` when i is out of range so the arity error comes from fn.Call
// instead of an index panic here.
func argType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	if i < ft.NumIn() {
		return ft.In(i)
	}
	return anyType
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()
