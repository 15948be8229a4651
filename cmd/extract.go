package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypticbench/crypticbench/internal/extract"
)

func newExtractCmd() *cobra.Command {
	var (
		rawDir       string
		benchmarkDir string
		visionModel  string
		apiKey       string
		cluesOnly    bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build benchmark files from raw puzzle scans",
		Long: `Extract clues from puzzle page PDFs and answers from the matching solution
images, and write one benchmark JSON file per puzzle.

A solution image is matched to its PDF by file stem (with an optional
"-solution" suffix). Reading answers uses the Anthropic vision API and
requires ANTHROPIC_API_KEY; --clues-only skips it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reader *extract.AnswerReader
			if !cluesOnly {
				reader = extract.NewAnswerReader(visionClientFromFlags(apiKey), visionModel)
			}

			written, err := extract.NewPipeline(reader).Run(cmd.Context(), rawDir, benchmarkDir)
			if err != nil {
				return err
			}

			fmt.Printf("Extracted %d puzzle(s):\n", len(written))
			for _, path := range written {
				fmt.Printf("  - %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rawDir, "raw-dir", "data/raw", "Directory with puzzle PDFs and solution images")
	cmd.Flags().StringVar(&benchmarkDir, "benchmark-dir", "data/benchmark", "Directory to write benchmark files to")
	cmd.Flags().StringVar(&visionModel, "vision-model", extract.DefaultAnswerModel, "Vision model for reading answer grids")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Anthropic API key (or set ANTHROPIC_API_KEY)")
	cmd.Flags().BoolVar(&cluesOnly, "clues-only", false, "Extract clues only, skip answer reading")

	return cmd
}
