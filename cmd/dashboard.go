package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypticbench/crypticbench/internal/dashboard"
	"github.com/crypticbench/crypticbench/internal/results"
)

func newDashboardCmd() *cobra.Command {
	var (
		resultsDir string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Aggregate saved results into the leaderboard snapshot",
		Long: `Read every result store, pick the winning run per model and task, and write
the ranked snapshot the web dashboard renders. The ranking is also printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := results.NewStore(resultsDir)

			snapshot, err := dashboard.NewAggregator(store).Build()
			if err != nil {
				return err
			}

			if snapshot.TotalResults == 0 {
				fmt.Println("No complete results to aggregate.")
			} else {
				fmt.Printf("%-4s %-40s %-10s %s\n", "#", "Model", "Accuracy", "Samples")
				for i, e := range snapshot.Results {
					fmt.Printf("%-4d %-40s %-10s %d/%d\n",
						i+1, e.ModelDisplay, dashboard.FormatAccuracy(e.Accuracy),
						e.SamplesCompleted, e.SamplesTotal)
				}
			}

			if err := snapshot.WriteFile(outputFile); err != nil {
				return err
			}
			fmt.Printf("\nSnapshot with %d result(s) written to %s\n", snapshot.TotalResults, outputFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory with result stores")
	cmd.Flags().StringVar(&outputFile, "output", "web/results.json", "Path to write the snapshot JSON to")

	return cmd
}
