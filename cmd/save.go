package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypticbench/crypticbench/internal/results"
	"github.com/crypticbench/crypticbench/internal/runner"
)

func newSaveCmd() *cobra.Command {
	var (
		logFile    string
		resultsDir string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the result of a previously written run log",
		Long: `Rebuild a result record from a run log and save it into the result store.

Useful when a run completed but saving was declined or failed, or after the
store was edited by hand.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := runner.LoadRunLog(logFile)
			if err != nil {
				return err
			}

			store := results.NewStore(resultsDir)
			resolver := results.NewResolver(store, results.NewTerminalPrompter())
			resolver.SetForce(force)

			action, err := resolver.Save(log.Record(logFile))
			if err != nil {
				return fmt.Errorf("failed to save result: %w", err)
			}

			fmt.Printf("Result %s in %s\n", action, store.Path(log.Model))
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "Path to the run log JSON file (required)")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory for result stores")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing result without asking")
	_ = cmd.MarkFlagRequired("log")

	return cmd
}
