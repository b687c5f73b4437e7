package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ArxivDigest/internal/app"
	"ArxivDigest/internal/domain"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		timeSpec   string
		categories []string
		folder     string
		aiSummary  bool
		aiProvider string
		strategy   string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, reconcile and write the reports of the given days",
		Example: `  arxivdigest run --time 2025.11.03 --category quant-ph
  arxivdigest run --time 2025.10,2025.11.01 --ai-summary --ai-provider openai`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("folder") {
				cfg.Output.Folder = folder
			}
			if flags.Changed("ai-summary") {
				cfg.Summary.Enabled = aiSummary
			}
			if flags.Changed("ai-provider") {
				cfg.Summary.Provider = aiProvider
			}
			if flags.Changed("use-url") {
				cfg.Fetch.Strategy = strategy
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			results, err := application.Run(cmd.Context(), timeSpec, categories, time.Now())
			printResults(cmd, results)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&timeSpec, "time", "default", "YYYY.MM, YYYY.MM.DD or a comma-separated list; default is the current month")
	f.StringSliceVar(&categories, "category", nil, "categories to process (default: every configured category)")
	f.StringVar(&folder, "folder", "", "root folder of the reports")
	f.BoolVar(&aiSummary, "ai-summary", false, "add an AI summary and translated title to every record")
	f.StringVar(&aiProvider, "ai-provider", "", "summary provider: openai, anthropic (claude), gemini or inference")
	f.StringVar(&strategy, "use-url", "", "listing source: catchup, advance or api")
	f.IntVar(&workers, "workers", 1, "days processed concurrently")
	return cmd
}

func printResults(cmd *cobra.Command, results []domain.DayResult) {
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Outcome != domain.OutcomePersisted {
			continue
		}
		fmt.Fprintf(out, "%s: %d records (%d collected, %d not collected, %d new) -> %s\n",
			res.Day, res.Total, res.Collected, res.NotCollected, len(res.New), res.Path)
	}
}
