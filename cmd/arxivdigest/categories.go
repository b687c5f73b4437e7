package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the supported categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load(cmd)
			if err != nil {
				return err
			}
			for _, name := range cfg.CategoryNames() {
				cat, err := cfg.Category(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cat.Name, cat.Archive)
			}
			return nil
		},
	}
}
