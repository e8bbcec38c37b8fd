// Package projectconfig loads the .bearcheck.yaml project-level
// configuration file: the source that accepts native YAML lists for the
// package filters.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/beartype/bearcheck/internal/options"
)

// FileName is the project configuration file, found by walking up from the
// start directory.
const FileName = ".bearcheck.yaml"

// maxSearchDepth bounds the upward walk.
const maxSearchDepth = 10

// File mirrors .bearcheck.yaml. Booleans are pointers so an absent key is
// distinguishable from an explicit false and falls through to the next
// configuration source.
type File struct {
	Tests        *bool    `yaml:"beartype_tests,omitempty"`
	Fixtures     *bool    `yaml:"beartype_fixtures,omitempty"`
	Packages     []string `yaml:"beartype_packages,omitempty"`
	SkipPackages []string `yaml:"beartype_skip_packages,omitempty"`
}

// Load finds .bearcheck.yaml by walking up from startDir (max 10 levels),
// validates it against the embedded schema, and unmarshals it. If no file
// is found, an empty File is returned with a nil error; real I/O errors,
// parse errors, and schema violations are returned to the caller.
func Load(startDir string) (*File, error) {
	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse validates and unmarshals raw .bearcheck.yaml bytes.
func Parse(data []byte) (*File, error) {
	if errs := validateBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %s", FileName, strings.Join(errs, "; "))
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &f, nil
}

// Source converts the file into a configuration source for the resolver.
func (f *File) Source() options.Source {
	return options.Source{
		Name:         "project",
		Tests:        f.Tests,
		Fixtures:     f.Fixtures,
		Packages:     f.Packages,
		SkipPackages: f.SkipPackages,
	}
}

// findConfigFile walks up from dir looking for the config file. Returns
// os.ErrNotExist if none is found. Propagates real I/O errors (e.g.
// permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxSearchDepth; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}
