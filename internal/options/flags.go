package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags binds the option table to a pflag.FlagSet. Presence is meaningful:
// only flags the user actually passed contribute to the CLI source, so a
// defaulted flag never shadows a config file.
type Flags struct {
	fs    *pflag.FlagSet
	bools map[string]*bool
	lists map[string]*string
}

// Register declares every plugin flag on fs and returns the accessor used
// to extract the CLI source after parsing.
func Register(fs *pflag.FlagSet) *Flags {
	f := &Flags{
		fs:    fs,
		bools: make(map[string]*bool),
		lists: make(map[string]*string),
	}
	for _, opt := range All {
		switch opt.Kind {
		case KindBool:
			f.bools[opt.Key] = fs.Bool(opt.Flag, false, opt.Help)
		case KindList:
			f.lists[opt.Key] = fs.String(opt.Flag, "", opt.Help)
		}
	}
	return f
}

// Source extracts the CLI configuration source from the parsed flag set.
// Malformed list values (unterminated quoting) are returned as errors; the
// caller reports them as configuration errors before anything runs.
func (f *Flags) Source() (Source, error) {
	src := Source{Name: "cli"}
	for _, opt := range All {
		if !f.fs.Changed(opt.Flag) {
			continue
		}
		switch opt.Kind {
		case KindBool:
			v := *f.bools[opt.Key]
			switch opt.Key {
			case KeyTests:
				src.Tests = &v
			case KeyFixtures:
				src.Fixtures = &v
			}
		case KindList:
			raw, err := Unquote(*f.lists[opt.Key])
			if err != nil {
				return Source{}, fmt.Errorf("--%s: %w", opt.Flag, err)
			}
			entries := SplitList(raw)
			if entries == nil {
				entries = []string{}
			}
			switch opt.Key {
			case KeyPackages:
				src.Packages = entries
			case KeySkipPackages:
				src.SkipPackages = entries
			}
		}
	}
	return src, nil
}
