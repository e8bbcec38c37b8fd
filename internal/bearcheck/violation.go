package bearcheck

import (
	"fmt"
	"reflect"
)

// Violation reports a value that does not satisfy a callable's declared
// types. Violations raised inside a wrapped callable are surfaced verbatim;
// they are never swallowed or retried.
type Violation struct {
	// Callable is the dotted name of the offending callable.
	Callable string
	// Param is the zero-based parameter position, or -1 when the violation
	// concerns a result value or the call shape itself.
	Param int
	// Want is the declared type, Got the dynamic type actually supplied.
	// Got is nil when an untyped nil was supplied.
	Want  reflect.Type
	Got   reflect.Type
	Value any
	// Detail overrides the generated message when set (arity mismatches).
	Detail string
}

func (v *Violation) Error() string {
	if v.Detail != "" {
		return fmt.Sprintf("bearcheck: callable %q: %s", v.Callable, v.Detail)
	}
	if v.Param >= 0 {
		if v.Got == nil {
			return fmt.Sprintf("bearcheck: callable %q: parameter %d declared %s, got nil",
				v.Callable, v.Param, v.Want)
		}
		return fmt.Sprintf("bearcheck: callable %q: parameter %d declared %s, got %s (%#v)",
			v.Callable, v.Param, v.Want, v.Got, v.Value)
	}
	if v.Got == nil {
		return fmt.Sprintf("bearcheck: callable %q: result declared %s, got nil", v.Callable, v.Want)
	}
	return fmt.Sprintf("bearcheck: callable %q: result declared %s, got %s (%#v)",
		v.Callable, v.Want, v.Got, v.Value)
}

func arityViolation(name string, want, got int, qualifier string) *Violation {
	return &Violation{
		Callable: name,
		Param:    -1,
		Detail:   fmt.Sprintf("expects %s%d arguments, got %d", qualifier, want, got),
	}
}
