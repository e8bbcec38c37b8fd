// Package selector decides which dotted module names get type-checked.
package selector

import (
	"strings"

	"github.com/beartype/bearcheck/internal/config"
)

// ShouldCheck reports whether the module with the given dotted name should
// be decorated under cfg. The predicate is pure and order-independent:
//
//  1. an exclude entry matching the module (exactly or as a dotted prefix)
//     always wins, regardless of how specific the include entries are;
//  2. a wildcard include matches everything else;
//  3. otherwise an include entry must match the module the same way.
func ShouldCheck(module string, cfg *config.Effective) bool {
	if module == "" {
		return false
	}
	for _, e := range cfg.ExcludePackages {
		if matchesPrefix(module, e) {
			return false
		}
	}
	for _, p := range cfg.IncludePackages {
		if p == config.Wildcard || matchesPrefix(module, p) {
			return true
		}
	}
	return false
}

// matchesPrefix reports whether module equals prefix or lives below it in
// dotted-name space. "pkg.subx" is not below "pkg.sub".
func matchesPrefix(module, prefix string) bool {
	return module == prefix || strings.HasPrefix(module, prefix+".")
}
