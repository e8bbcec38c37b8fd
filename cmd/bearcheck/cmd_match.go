package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beartype/bearcheck/internal/config"
	"github.com/beartype/bearcheck/internal/options"
	"github.com/beartype/bearcheck/internal/selector"
)

var (
	matchDir   string
	matchFlags *options.Flags
)

func newMatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <module>...",
		Short: "Evaluate the package selection predicate for module names",
		Long: `Evaluate the resolved configuration's package selection predicate for
each dotted module name and print check/skip per name.

Exits with status 1 if any given module would not be type-checked, so CI
can assert that a package list covers what it should.`,
		Args: cobra.MinimumNArgs(1),
		RunE: matchCommandE,
	}

	cmd.Flags().StringVar(&matchDir, "dir", ".", "Directory to resolve configuration files from")
	matchFlags = options.Register(cmd.Flags())

	return cmd
}

func matchCommandE(cmd *cobra.Command, args []string) error {
	eff, err := config.Load(matchFlags, matchDir)
	if err != nil {
		return err
	}

	skipped := 0
	for _, module := range args {
		if selector.ShouldCheck(module, eff) {
			fmt.Fprintf(cmd.OutOrStdout(), "check %s\n", module)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "skip  %s\n", module)
			skipped++
		}
	}

	if skipped > 0 {
		return &MatchFailureError{
			Message: fmt.Sprintf("%d of %d modules would not be type-checked", skipped, len(args)),
		}
	}
	return nil
}
