// Package iniconfig loads the [bearcheck] section of bearcheck.ini: the
// source whose list values are delimited strings (comma or whitespace)
// rather than native lists.
package iniconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/ini.v1"

	"github.com/beartype/bearcheck/internal/options"
)

// FileName is the INI configuration file, found by walking up from the
// start directory.
const FileName = "bearcheck.ini"

// SectionName is the section holding the plugin's keys.
const SectionName = "bearcheck"

// maxSearchDepth bounds the upward walk.
const maxSearchDepth = 10

// File mirrors the [bearcheck] INI section. Every field is a pointer so an
// absent key falls through to the defaults instead of reading as false or
// empty.
type File struct {
	Tests        *bool   `mapstructure:"beartype_tests"`
	Fixtures     *bool   `mapstructure:"beartype_fixtures"`
	Packages     *string `mapstructure:"beartype_packages"`
	SkipPackages *string `mapstructure:"beartype_skip_packages"`
}

// Load finds bearcheck.ini by walking up from startDir (max 10 levels) and
// parses its [bearcheck] section. A missing file or missing section yields
// an empty File with a nil error.
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

// Parse decodes raw INI bytes. Unknown keys in the [bearcheck] section and
// non-boolean values for boolean keys are errors: a typo in configuration
// should abort the session, not silently do nothing.
func Parse(data []byte) (*File, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	sec, err := cfg.GetSection(SectionName)
	if err != nil {
		return &File{}, nil
	}

	raw := make(map[string]any, len(sec.Keys()))
	for k, v := range sec.KeysHash() {
		raw[k] = v
	}

	var f File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true, // "1" and "true" both work for booleans
		ErrorUnused:      true,
		Result:           &f,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%s [%s]: %w", FileName, SectionName, err)
	}
	return &f, nil
}

// Source converts the file into a configuration source, splitting the
// delimited list values.
func (f *File) Source() options.Source {
	src := options.Source{
		Name:     "ini",
		Tests:    f.Tests,
		Fixtures: f.Fixtures,
	}
	if f.Packages != nil {
		src.Packages = options.SplitList(*f.Packages)
		if src.Packages == nil {
			src.Packages = []string{}
		}
	}
	if f.SkipPackages != nil {
		src.SkipPackages = options.SplitList(*f.SkipPackages)
		if src.SkipPackages == nil {
			src.SkipPackages = []string{}
		}
	}
	return src
}

// findConfigFile walks up from dir looking for the config file. Returns
// os.ErrNotExist if none is found.
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
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}
