package bearcheck

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCheckArgs(t *testing.T) {
	checker := New()

	tests := []struct {
		name      string
		fn        any
		args      []any
		wantErr   bool
		errSubstr string
	}{
		{
			name: "matching args pass",
			fn:   func(n int, s string) {},
			args: []any{1, "x"},
		},
		{
			name:      "string for int parameter",
			fn:        func(n int) {},
			args:      []any{"oops"},
			wantErr:   true,
			errSubstr: "parameter 0 declared int, got string",
		},
		{
			name:      "wrong arity",
			fn:        func(n int) {},
			args:      []any{1, 2},
			wantErr:   true,
			errSubstr: "expects 1 arguments, got 2",
		},
		{
			name: "any parameter accepts everything",
			fn:   func(v any) {},
			args: []any{struct{}{}},
		},
		{
			name: "nil for pointer parameter",
			fn:   func(p *int) {},
			args: []any{nil},
		},
		{
			name:      "nil for value parameter",
			fn:        func(n int) {},
			args:      []any{nil},
			wantErr:   true,
			errSubstr: "parameter 0 declared int, got nil",
		},
		{
			name: "assignable concrete to interface",
			fn:   func(err error) {},
			args: []any{errors.New("boom")},
		},
		{
			name: "variadic tail",
			fn:   func(prefix string, ns ...int) {},
			args: []any{"p", 1, 2, 3},
		},
		{
			name:      "variadic tail wrong type",
			fn:        func(prefix string, ns ...int) {},
			args:      []any{"p", 1, "two"},
			wantErr:   true,
			errSubstr: "parameter 2 declared int, got string",
		},
		{
			name:      "variadic missing required arg",
			fn:        func(prefix string, ns ...int) {},
			args:      []any{},
			wantErr:   true,
			errSubstr: "expects at least 1 arguments, got 0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checker.CheckArgs("test.fn", reflect.TypeOf(tc.fn), tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected violation")
				}
				var v *Violation
				if !errors.As(err, &v) {
					t.Fatalf("error %T is not a *Violation", err)
				}
				if !strings.Contains(err.Error(), tc.errSubstr) {
					t.Errorf("error %q does not contain %q", err, tc.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected violation: %v", err)
			}
		})
	}
}

func TestCheckResult(t *testing.T) {
	checker := New()
	stringType := reflect.TypeOf("")

	if err := checker.CheckResult("fx", stringType, "ok"); err != nil {
		t.Fatalf("matching result: %v", err)
	}
	if err := checker.CheckResult("fx", nil, 42); err != nil {
		t.Fatalf("nil declared type disables the check: %v", err)
	}

	err := checker.CheckResult("fx", stringType, 42)
	if err == nil {
		t.Fatal("expected violation for int where string declared")
	}
	if !strings.Contains(err.Error(), "result declared string, got int") {
		t.Errorf("unexpected message: %q", err)
	}
	if !strings.Contains(err.Error(), `"fx"`) {
		t.Errorf("message should name the callable: %q", err)
	}
}

func TestWrap(t *testing.T) {
	checker := New()

	t.Run("passes through on success", func(t *testing.T) {
		inv, err := Wrap("math.add", func(a, b int) int { return a + b }, checker)
		if err != nil {
			t.Fatal(err)
		}
		out, err := inv(context.Background(), []any{2, 3})
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 || out[0].(int) != 5 {
			t.Errorf("out = %v, want [5]", out)
		}
	})

	t.Run("violation instead of call", func(t *testing.T) {
		called := false
		inv, err := Wrap("math.add", func(a, b int) int { called = true; return a + b }, checker)
		if err != nil {
			t.Fatal(err)
		}
		_, err = inv(context.Background(), []any{2, "three"})
		var v *Violation
		if !errors.As(err, &v) {
			t.Fatalf("error %v is not a *Violation", err)
		}
		if called {
			t.Error("callable must not run when its arguments violate the declared types")
		}
		if v.Callable != "math.add" || v.Param != 1 {
			t.Errorf("violation = %+v, want math.add parameter 1", v)
		}
	})

	t.Run("wrapping a non-func fails", func(t *testing.T) {
		if _, err := Wrap("x", 42, checker); err == nil {
			t.Error("expected error wrapping an int")
		}
		if _, err := Wrap("x", nil, checker); err == nil {
			t.Error("expected error wrapping nil")
		}
	})

	t.Run("panic inside callable becomes error", func(t *testing.T) {
		inv, err := Wrap("boom", func() { panic("kaboom") }, checker)
		if err != nil {
			t.Fatal(err)
		}
		_, err = inv(context.Background(), nil)
		if err == nil || !strings.Contains(err.Error(), "kaboom") {
			t.Errorf("err = %v, want recovered panic", err)
		}
	})
}
