// Package config merges the three configuration sources — CLI flags, the
// .bearcheck.yaml project file, and the bearcheck.ini file — into the one
// immutable effective configuration every decoration decision reads.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beartype/bearcheck/internal/iniconfig"
	"github.com/beartype/bearcheck/internal/options"
	"github.com/beartype/bearcheck/internal/projectconfig"
)

// Wildcard in the include set matches every module name.
const Wildcard = options.Wildcard

// ConfigurationError is fatal: it is reported at session start and aborts
// the run before any test executes.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Effective is the merged view of the plugin's options. It is built once
// per session and never mutated afterwards; the package lists are sorted,
// deduplicated sets.
type Effective struct {
	CheckTests      bool
	CheckFixtures   bool
	IncludePackages []string
	ExcludePackages []string

	// Origins records which source won each option key ("cli", "project",
	// "ini", or "default").
	Origins map[string]string
}

// Load resolves the effective configuration from the parsed CLI flags and
// the config files discovered from startDir. Any malformed source becomes
// a *ConfigurationError.
func Load(flags *options.Flags, startDir string) (*Effective, error) {
	cli, err := flags.Source()
	if err != nil {
		return nil, &ConfigurationError{Source: "cli", Err: err}
	}

	project, err := projectconfig.Load(startDir)
	if err != nil {
		return nil, &ConfigurationError{Source: "project", Err: err}
	}

	iniFile, err := iniconfig.Load(startDir)
	if err != nil {
		return nil, &ConfigurationError{Source: "ini", Err: err}
	}

	return Resolve(cli, project.Source(), iniFile.Source()), nil
}

// Resolve merges sources given in precedence order, highest first. Each
// option resolves independently: the first source that sets it wins, and
// an option no source sets takes its default (checks off, no packages).
func Resolve(sources ...options.Source) *Effective {
	eff := &Effective{
		IncludePackages: []string{},
		ExcludePackages: []string{},
		Origins: map[string]string{
			options.KeyTests:        "default",
			options.KeyFixtures:     "default",
			options.KeyPackages:     "default",
			options.KeySkipPackages: "default",
		},
	}

	for _, src := range sources {
		if src.Tests != nil && eff.Origins[options.KeyTests] == "default" {
			eff.CheckTests = *src.Tests
			eff.Origins[options.KeyTests] = src.Name
		}
		if src.Fixtures != nil && eff.Origins[options.KeyFixtures] == "default" {
			eff.CheckFixtures = *src.Fixtures
			eff.Origins[options.KeyFixtures] = src.Name
		}
		if src.Packages != nil && eff.Origins[options.KeyPackages] == "default" {
			eff.IncludePackages = normalizeSet(src.Packages)
			eff.Origins[options.KeyPackages] = src.Name
		}
		if src.SkipPackages != nil && eff.Origins[options.KeySkipPackages] == "default" {
			eff.ExcludePackages = normalizeSet(src.SkipPackages)
			eff.Origins[options.KeySkipPackages] = src.Name
		}
	}
	return eff
}

// normalizeSet trims, drops empties, deduplicates, and sorts.
func normalizeSet(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
