package harness

import (
	"fmt"
	"reflect"
)

// Callable is a function registered under a package. External packages hook
// into the harness by registering their callables; tests then dispatch them
// reflectively, which is where wrapping pays off.
type Callable struct {
	Name string

	fn      reflect.Value
	invoke  Invoke
	checked bool
}

// NewCallable builds a registered callable around fn, which must be a func.
func NewCallable(name string, fn any) (*Callable, error) {
	fv, err := funcValue(name, fn)
	if err != nil {
		return nil, err
	}
	return &Callable{Name: name, fn: fv, invoke: defaultInvoke(name, fv)}, nil
}

// Func returns the underlying function.
func (c *Callable) Func() any { return c.fn.Interface() }

// Invoker returns the current invoker.
func (c *Callable) Invoker() Invoke { return c.invoke }

// SetInvoker replaces the invoker and marks the callable checked.
func (c *Callable) SetInvoker(inv Invoke) {
	c.invoke = inv
	c.checked = true
}

// Checked reports whether the callable's invoker was already replaced.
func (c *Callable) Checked() bool { return c.checked }

// Package groups callables under a dotted name (e.g. "pkg.sub.mod").
// Subpackages are registered as their own packages; prefix matching, not
// enumeration, relates them.
type Package struct {
	Name      string
	callables []*Callable
}

// NewPackage groups callables under the dotted name.
func NewPackage(name string, callables ...*Callable) *Package {
	return &Package{Name: name, callables: callables}
}

// Callables returns the package's callables.
func (p *Package) Callables() []*Callable { return p.callables }

// PackageHook fires once per package, at registration.
type PackageHook func(pkg *Package)

// Registry tracks registered packages and fires load hooks exactly once per
// package. Packages registered before any hook is installed stay untouched;
// Loaded lets a late-installed plugin discover (and warn about) them.
type Registry struct {
	packages map[string]*Package
	order    []string
	hooks    []PackageHook
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{packages: make(map[string]*Package)}
}

// Register adds a package and fires load hooks for it. Registering the same
// dotted name twice is an error; load-time decoration happens once.
func (r *Registry) Register(pkg *Package) error {
	if _, ok := r.packages[pkg.Name]; ok {
		return fmt.Errorf("harness: package %q already registered", pkg.Name)
	}
	r.packages[pkg.Name] = pkg
	r.order = append(r.order, pkg.Name)
	for _, hook := range r.hooks {
		hook(pkg)
	}
	return nil
}

// OnLoad registers a hook for future package registrations.
func (r *Registry) OnLoad(hook PackageHook) {
	r.hooks = append(r.hooks, hook)
}

// Loaded returns the registered package names in registration order.
func (r *Registry) Loaded() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Lookup returns the package registered under name.
func (r *Registry) Lookup(name string) (*Package, bool) {
	pkg, ok := r.packages[name]
	return pkg, ok
}
