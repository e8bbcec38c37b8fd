package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beartype/bearcheck/internal/config"
	"github.com/beartype/bearcheck/internal/options"
)

var (
	configDir   string
	configFlags *options.Flags
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Resolve and print the effective configuration",
		Long: `Resolve the effective configuration from CLI flags, .bearcheck.yaml,
and bearcheck.ini (in that precedence order) and print each option with
the source that won it.

A malformed configuration file or flag value exits with status 2 before
anything else happens.`,
		Args: cobra.NoArgs,
		RunE: configCommandE,
	}

	cmd.Flags().StringVar(&configDir, "dir", ".", "Directory to resolve configuration files from")
	configFlags = options.Register(cmd.Flags())

	return cmd
}

func configCommandE(cmd *cobra.Command, args []string) error {
	eff, err := config.Load(configFlags, configDir)
	if err != nil {
		return err
	}
	printEffective(cmd.OutOrStdout(), eff)
	return nil
}

func printEffective(w io.Writer, eff *config.Effective) {
	printOption(w, options.KeyTests, fmt.Sprintf("%v", eff.CheckTests), eff.Origins)
	printOption(w, options.KeyFixtures, fmt.Sprintf("%v", eff.CheckFixtures), eff.Origins)
	printOption(w, options.KeyPackages, strings.Join(eff.IncludePackages, ", "), eff.Origins)
	printOption(w, options.KeySkipPackages, strings.Join(eff.ExcludePackages, ", "), eff.Origins)
}

func printOption(w io.Writer, key, value string, origins map[string]string) {
	fmt.Fprintf(w, "%-24s = %-20s (%s)\n", key, value, origins[key])
}
