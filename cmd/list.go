package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypticbench/crypticbench/internal/benchmark"
)

func newListCmd() *cobra.Command {
	var (
		benchmarkDir string
		taskDir      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List benchmark puzzles and available tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := benchmark.ListTasks(taskDir)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}
			fmt.Printf("Available tasks:\n\n")
			for _, name := range names {
				task, err := benchmark.LoadTask(name, taskDir)
				if err != nil {
					fmt.Printf("  - %s (error loading: %v)\n", name, err)
					continue
				}
				fmt.Printf("  - %s (version %s)\n", task.Name, task.Version)
			}

			puzzles, err := benchmark.LoadDir(benchmarkDir)
			if err != nil {
				fmt.Printf("\nNo puzzles found in %s: %v\n", benchmarkDir, err)
				return nil
			}

			fmt.Printf("\nBenchmark puzzles in %s:\n\n", benchmarkDir)
			for _, p := range puzzles {
				fmt.Printf("  - %s\n", p.Path)
				if p.Puzzle.Metadata.PuzzleName != "" {
					fmt.Printf("    Puzzle: %s", p.Puzzle.Metadata.PuzzleName)
					if p.Puzzle.Metadata.Date != "" {
						fmt.Printf(" (%s)", p.Puzzle.Metadata.Date)
					}
					fmt.Println()
				}
				fmt.Printf("    Clues: %d across, %d down, %d answered\n\n",
					len(p.Puzzle.Across), len(p.Puzzle.Down), len(p.Samples()))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&benchmarkDir, "benchmark-dir", "data/benchmark", "Directory with benchmark puzzle files")
	cmd.Flags().StringVar(&taskDir, "task-dir", "", "External tasks directory")

	return cmd
}
