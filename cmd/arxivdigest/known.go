package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ArxivDigest/internal/report"
)

func newKnownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "known <report.md>",
		Short: "Print the identifiers a report already covers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			for _, id := range report.ParsePrior(content).IDs {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
