package main

import (
	"github.com/spf13/cobra"

	"ArxivDigest/internal/app"
)

func newScheduleCmd(root *rootOptions) *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run today's digest now and then on the configured cron expression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Schedule(cmd.Context(), categories)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "categories to process (default: every configured category)")
	return cmd
}
