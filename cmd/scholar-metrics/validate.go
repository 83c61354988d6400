// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-metrics/internal/input"
)

var validateCmd = &cobra.Command{
	Use:   "validate <identifiers.xlsx|identifiers.csv>",
	Short: "Check an identifier sheet and the configuration without calling any API",
	Long: `Validate reads the identifier sheet the same way collect does and reports
which column was used, how many ORCID iDs are valid, and which are not. It also
validates the resolved configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ids, err := input.ReadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:      %s\n", args[0])
	fmt.Fprintf(out, "Column:    %s\n", ids.Column)
	fmt.Fprintf(out, "Valid:     %d\n", len(ids.Valid))
	fmt.Fprintf(out, "Invalid:   %d\n", len(ids.Invalid))
	for _, id := range ids.Invalid {
		fmt.Fprintf(out, "  - %q\n", id)
	}
	fmt.Fprintf(out, "Sources:   %v\n", cfg.FixedSources)
	if cfg.ContactEmail == "" {
		fmt.Fprintln(out, "Warning:   no contact email configured (use --email or .secrets/contact-email)")
	}

	if len(ids.Valid) == 0 {
		return fmt.Errorf("no valid ORCID iDs in %s", args[0])
	}
	return nil
}
