package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bearcheck",
		Short: "Bearcheck - configuration-driven runtime type-checking for test harnesses",
		Long: `Bearcheck decides which harness callables get wrapped with runtime
type-checking, based on configuration merged from CLI flags, a
.bearcheck.yaml project file, and a bearcheck.ini file.

This CLI resolves that configuration and answers what would be checked.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newMatchCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
