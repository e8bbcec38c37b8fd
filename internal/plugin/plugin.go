// Package plugin hooks the harness lifecycle to apply bearcheck's
// type-checking decoration selectively: tests at collection, fixtures at
// first setup, registered packages at load, all driven by the effective
// configuration. The plugin never swallows a violation and never retries;
// its only job is deciding what to wrap and attributing failures usefully.
package plugin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/beartype/bearcheck/internal/bearcheck"
	"github.com/beartype/bearcheck/internal/config"
	"github.com/beartype/bearcheck/internal/harness"
	"github.com/beartype/bearcheck/internal/selector"
)

// Plugin holds the immutable effective configuration and the checker. All
// state is per-instance: installing into two harnesses shares nothing.
type Plugin struct {
	cfg     *config.Effective
	checker bearcheck.Checker
	logger  *slog.Logger
}

// Install registers the plugin's callbacks against h's hook points and
// returns the plugin. A nil checker means the reference checker; a nil
// logger means slog.Default().
func Install(h *harness.Harness, cfg *config.Effective, checker bearcheck.Checker, logger *slog.Logger) *Plugin {
	if checker == nil {
		checker = bearcheck.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Plugin{cfg: cfg, checker: checker, logger: logger}

	h.OnCollection(p.decorateTests)
	h.OnFixtureSetup(p.decorateFixture)
	h.OnTestCall(p.propagateFixtureFailures)

	if len(cfg.IncludePackages) > 0 {
		p.warnUncheckable(h.Registry().Loaded())
		h.Registry().OnLoad(p.decoratePackage)
	}
	return p
}

// decorateTests wraps every collected test with type-checking. A violation
// raised by the wrapper surfaces as a normal test failure.
func (p *Plugin) decorateTests(tests []*harness.Test) {
	if !p.cfg.CheckTests {
		return
	}
	for _, t := range tests {
		if t.Checked() {
			continue
		}
		inv, err := bearcheck.Wrap(t.Name, t.Func(), p.checker)
		if err != nil {
			p.logger.Warn("test not type-checked", "test", t.Name, "error", err)
			continue
		}
		t.SetInvoker(inv)
	}
}

// decorateFixture wraps a fixture at its first setup. Teardown fixtures
// are skipped with a warning: wrapping would have to interpose on the
// teardown step too, which the checker contract does not cover. A
// violation inside a wrapped fixture does not error the setup; the fixture
// yields a *FixtureFailure sentinel that propagateFixtureFailures later
// converts into a failure of the test that requested it.
func (p *Plugin) decorateFixture(fx *harness.Fixture) {
	if !p.cfg.CheckFixtures || fx.Checked() {
		return
	}
	if fx.HasTeardown() {
		p.logger.Warn("fixture not type-checked: teardown fixtures are unsupported", "fixture", fx.Name)
		fx.MarkChecked()
		return
	}

	wrapped, err := bearcheck.Wrap(fx.Name, fx.Func(), p.checker)
	if err != nil {
		p.logger.Warn("fixture not type-checked", "fixture", fx.Name, "error", err)
		fx.MarkChecked()
		return
	}

	name, provides := fx.Name, fx.Provides
	fx.SetInvoker(func(ctx context.Context, args []any) ([]any, error) {
		results, err := wrapped(ctx, args)
		if err != nil {
			if v := violationOf(err); v != nil {
				return []any{&FixtureFailure{Fixture: name, Violation: v}}, nil
			}
			return nil, err
		}
		if len(results) > 0 {
			if err := p.checker.CheckResult(name, provides, results[0]); err != nil {
				if v := violationOf(err); v != nil {
					return []any{&FixtureFailure{Fixture: name, Violation: v}}, nil
				}
				return nil, err
			}
		}
		return results, nil
	})
}

// propagateFixtureFailures fails a test whose resolved arguments include a
// fixture-failure sentinel, naming the offending fixture.
func (p *Plugin) propagateFixtureFailures(t *harness.Test, args []any) error {
	if !p.cfg.CheckFixtures {
		return nil
	}
	for _, arg := range args {
		if ff, ok := arg.(*FixtureFailure); ok {
			return ff
		}
	}
	return nil
}

// decoratePackage wraps every callable of a package whose dotted name
// satisfies the selection predicate. Subpackages register as their own
// packages and match by prefix, so no recursion is needed here.
func (p *Plugin) decoratePackage(pkg *harness.Package) {
	if !selector.ShouldCheck(pkg.Name, p.cfg) {
		return
	}
	wrapped := 0
	for _, c := range pkg.Callables() {
		if c.Checked() {
			continue
		}
		inv, err := bearcheck.Wrap(c.Name, c.Func(), p.checker)
		if err != nil {
			p.logger.Warn("callable not type-checked", "callable", c.Name, "error", err)
			continue
		}
		c.SetInvoker(inv)
		wrapped++
	}
	p.logger.Debug("type-checking package", "package", pkg.Name, "callables", wrapped)
}

// warnUncheckable reports packages that registered before the plugin was
// installed: they matched the include set but their callables can no
// longer be wrapped. Under a wildcard include, harness-internal names are
// left out of the warning.
func (p *Plugin) warnUncheckable(loaded []string) {
	var names []string
	wildcard := hasWildcard(p.cfg.IncludePackages)
	for _, name := range loaded {
		if wildcard {
			if _, ok := ignorablePackages[rootName(name)]; ok {
				continue
			}
		}
		if selector.ShouldCheck(name, p.cfg) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	p.logger.Warn("previously registered packages not checkable",
		"packages", strings.Join(names, ", "))
}

// ignorablePackages are root names never worth warning about under a
// wildcard include: they belong to the harness and plugin themselves.
var ignorablePackages = map[string]struct{}{
	"bearcheck": {},
	"harness":   {},
	"main":      {},
}

func hasWildcard(includes []string) bool {
	for _, p := range includes {
		if p == config.Wildcard {
			return true
		}
	}
	return false
}

func rootName(module string) string {
	if i := strings.IndexByte(module, '.'); i >= 0 {
		return module[:i]
	}
	return module
}

func violationOf(err error) *bearcheck.Violation {
	var v *bearcheck.Violation
	if errors.As(err, &v) {
		return v
	}
	return nil
}
