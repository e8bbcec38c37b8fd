// Package options declares the plugin's options once — CLI flag, INI key,
// and project-config key together — and normalizes the raw values each
// configuration source supplies for them.
package options

import (
	"fmt"
	"strings"
)

// Underscored option keys, shared by the INI and project-config sources.
// CLI flags use the same names with dashes.
const (
	KeyTests        = "beartype_tests"
	KeyFixtures     = "beartype_fixtures"
	KeyPackages     = "beartype_packages"
	KeySkipPackages = "beartype_skip_packages"
)

// Wildcard in a package list matches every module name. It is matched
// literally and never split.
const Wildcard = "*"

// Kind discriminates option value shapes.
type Kind int

const (
	KindBool Kind = iota
	KindList
)

// Option binds one plugin option's CLI flag to its config-file key.
type Option struct {
	Flag string
	Key  string
	Kind Kind
	Help string
}

// All is the full option table, the single source of truth for what the
// plugin accepts from any source.
var All = []Option{
	{Flag: "beartype-tests", Key: KeyTests, Kind: KindBool,
		Help: "type-check collected test functions"},
	{Flag: "beartype-fixtures", Key: KeyFixtures, Kind: KindBool,
		Help: "type-check fixture functions"},
	{Flag: "beartype-packages", Key: KeyPackages, Kind: KindList,
		Help: `comma-delimited packages and modules to type-check ("*" for all)`},
	{Flag: "beartype-skip-packages", Key: KeySkipPackages, Kind: KindList,
		Help: "comma-delimited packages and modules to exempt from type-checking"},
}

// Source is one configuration source's view of the options. Nil fields mean
// the source does not set the option, which is what lets a lower-precedence
// source shine through.
type Source struct {
	Name         string
	Tests        *bool
	Fixtures     *bool
	Packages     []string
	SkipPackages []string
}

// SplitList normalizes a delimited list value: entries separated by commas
// or whitespace, trimmed, empties dropped. The wildcard survives whole
// because neither delimiter appears in it.
func SplitList(raw string) []string {
	var out []string
	for _, chunk := range strings.Split(raw, ",") {
		for _, entry := range strings.Fields(chunk) {
			out = append(out, entry)
		}
	}
	return out
}

// Unquote strips one matching pair of surrounding single or double quotes,
// as left in place by GNU-style --flag="a,b" values. A quote opened (or
// closed) on one side only is malformed.
func Unquote(raw string) (string, error) {
	if len(raw) == 0 {
		return raw, nil
	}
	first, last := raw[0], raw[len(raw)-1]
	firstQuoted := first == '"' || first == '\''
	lastQuoted := last == '"' || last == '\''
	switch {
	case firstQuoted && len(raw) > 1 && last == first:
		return raw[1 : len(raw)-1], nil
	case firstQuoted || lastQuoted:
		return "", fmt.Errorf("unterminated quote in %q", raw)
	default:
		return raw, nil
	}
}
