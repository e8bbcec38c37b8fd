package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/beartype/bearcheck/internal/projectconfig"
)

const starterConfig = `# bearcheck project configuration.
#
# Precedence: CLI flags > this file > bearcheck.ini > defaults.
# All checks default to off.

# Type-check collected test functions.
#beartype_tests: true

# Type-check fixture functions.
#beartype_fixtures: true

# Dotted package names to type-check at registration, "*" for everything.
#beartype_packages:
#  - mypkg
#  - mypkg.sub

# Dotted package names exempted even when matched above.
#beartype_skip_packages:
#  - mypkg.sub.generated
`

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter .bearcheck.yaml",
		Long: `Write a commented starter .bearcheck.yaml into the given directory
(current directory by default). Refuses to overwrite an existing file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initCommandE,
	}
	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, projectconfig.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
