package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newDocsCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate CLI reference documentation",
		Long: `Generate markdown reference documentation for every synlint command
into the given directory.`,
		Args: cobra.NoArgs,
		// Override parent PersistentPreRunE — docs needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("creating docs directory: %w", err)}
			}

			if err := doc.GenMarkdownTree(cmd.Root(), outputDir); err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("generating docs: %w", err)}
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "documentation written to %s\n", outputDir)

			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "./docs", "directory to write markdown files to")

	return cmd
}
