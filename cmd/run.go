package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crypticbench/crypticbench/internal/benchmark"
	"github.com/crypticbench/crypticbench/internal/dashboard"
	"github.com/crypticbench/crypticbench/internal/llm"
	"github.com/crypticbench/crypticbench/internal/results"
	"github.com/crypticbench/crypticbench/internal/runner"
)

func newRunCmd() *cobra.Command {
	var (
		model         string
		task          string
		endpoint      string
		apiKey        string
		temperature   float64
		limit         int
		benchmarkFile string
		benchmarkDir  string
		taskDir       string
		resultsDir    string
		logsDir       string
		force         bool
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark against a model and save the result",
		Long: `Send every answered clue from the benchmark files to a model, score the
responses, and save the result record.

If a result for the same model and settings already exists, you are asked
whether to override it; --force overrides without asking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			t, err := benchmark.LoadTask(task, taskDir)
			if err != nil {
				return fmt.Errorf("failed to load task: %w", err)
			}

			var puzzles []benchmark.PuzzleFile
			if benchmarkFile != "" {
				puzzle, err := benchmark.LoadPuzzle(benchmarkFile)
				if err != nil {
					return fmt.Errorf("failed to load puzzle: %w", err)
				}
				puzzles = []benchmark.PuzzleFile{{Path: benchmarkFile, Puzzle: puzzle}}
			} else {
				puzzles, err = benchmark.LoadDir(benchmarkDir)
				if err != nil {
					return fmt.Errorf("failed to load puzzles: %w", err)
				}
			}

			client, requestModel, err := llm.ForModel(model, endpoint, apiKey)
			if err != nil {
				return err
			}

			r := runner.NewRunner(client, t, logsDir)
			r.SetProgressFunc(func(modelName string, idx, total int) {
				fmt.Printf("\r  [%s] Solving clue %d/%d...", modelName, idx, total)
			})

			fmt.Printf("Task: %s (version %s)\n", t.Name, t.Version)
			fmt.Printf("Model: %s (temperature: %.1f)\n", model, temperature)
			fmt.Printf("Puzzles: %d\n\n", len(puzzles))

			log, logPath, err := r.Run(ctx, puzzles, runner.RunConfig{
				Model:            model,
				RequestModel:     requestModel,
				Temperature:      temperature,
				Limit:            limit,
				ModelArgs:        map[string]any{"temperature": temperature},
				FrameworkVersion: rootCmd.Version,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n\nRun complete.\n")
			fmt.Printf("Run ID: %s\n", log.RunID)
			fmt.Printf("Accuracy: %s (%d/%d clues)\n",
				dashboard.FormatAccuracy(log.Accuracy()), log.Completed(), len(log.Samples))
			fmt.Printf("Log: %s\n", logPath)

			store := results.NewStore(resultsDir)
			resolver := results.NewResolver(store, results.NewTerminalPrompter())
			resolver.SetForce(force)

			action, err := resolver.Save(log.Record(logPath))
			if err != nil {
				return fmt.Errorf("failed to save result: %w", err)
			}
			fmt.Printf("Result %s in %s\n", action, store.Path(model))

			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model identifier as provider/name (required)")
	cmd.Flags().StringVar(&task, "task", "cryptic-crossword", "Task name")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OpenAI-compatible endpoint URL for locally hosted models")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or set OPENAI_API_KEY / ANTHROPIC_API_KEY)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.0, "Temperature for generation")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of clues to evaluate (0 = all)")
	cmd.Flags().StringVar(&benchmarkFile, "benchmark-file", "", "Single puzzle file to evaluate (default: all in --benchmark-dir)")
	cmd.Flags().StringVar(&benchmarkDir, "benchmark-dir", "data/benchmark", "Directory with benchmark puzzle files")
	cmd.Flags().StringVar(&taskDir, "task-dir", "", "External tasks directory")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory for result stores")
	cmd.Flags().StringVar(&logsDir, "logs-dir", "logs", "Directory for run logs")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing result without asking")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 30m, 1h). 0 means no timeout")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}
