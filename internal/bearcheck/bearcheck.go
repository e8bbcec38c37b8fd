// Package bearcheck wraps reflectively-invoked callables with runtime
// type-checking. A harness that dispatches tests, fixtures, and registered
// callables through reflection passes values as `any`, so a mismatched
// dynamic type normally surfaces as a reflect panic deep inside the runner.
// Wrapping a callable with a Checker turns that mismatch into a descriptive
// *Violation before the call happens.
package bearcheck

import (
	"reflect"
)

// Checker validates a reflective call against a callable's declared types.
// It is the consumed contract: everything outside this package depends on
// the interface, never on the reference implementation.
type Checker interface {
	// CheckArgs validates args against fn's declared parameter types.
	// fn must be a func type. Returns a *Violation on mismatch.
	CheckArgs(name string, fn reflect.Type, args []any) error

	// CheckResult validates a produced value against a declared result
	// type. A nil declared type disables the check (the callable's own
	// signature already constrains the value).
	CheckResult(name string, declared reflect.Type, value any) error
}

// New returns the reference reflect-based checker.
func New() Checker { return reflectChecker{} }

type reflectChecker struct{}

func (reflectChecker) CheckArgs(name string, fn reflect.Type, args []any) error {
	if fn.Kind() != reflect.Func {
		return &Violation{Callable: name, Param: -1, Detail: "not a function"}
	}

	if fn.IsVariadic() {
		if len(args) < fn.NumIn()-1 {
			return arityViolation(name, fn.NumIn()-1, len(args), "at least ")
		}
	} else if len(args) != fn.NumIn() {
		return arityViolation(name, fn.NumIn(), len(args), "")
	}

	for i, arg := range args {
		want := paramType(fn, i)
		if isAny(want) {
			continue
		}
		if arg == nil {
			if !isNilable(want) {
				return &Violation{Callable: name, Param: i, Want: want}
			}
			continue
		}
		got := reflect.TypeOf(arg)
		if !got.AssignableTo(want) {
			return &Violation{Callable: name, Param: i, Want: want, Got: got, Value: arg}
		}
	}
	return nil
}

func (reflectChecker) CheckResult(name string, declared reflect.Type, value any) error {
	if declared == nil || isAny(declared) {
		return nil
	}
	if value == nil {
		if !isNilable(declared) {
			return &Violation{Callable: name, Param: -1, Want: declared}
		}
		return nil
	}
	got := reflect.TypeOf(value)
	if !got.AssignableTo(declared) {
		return &Violation{Callable: name, Param: -1, Want: declared, Got: got, Value: value}
	}
	return nil
}

// paramType returns the declared type of parameter position i, resolving
// variadic parameters to their element type.
func paramType(fn reflect.Type, i int) reflect.Type {
	if fn.IsVariadic() && i >= fn.NumIn()-1 {
		return fn.In(fn.NumIn() - 1).Elem()
	}
	return fn.In(i)
}

func isAny(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}
