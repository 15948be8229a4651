package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExts are the solution image formats the pipeline pairs with a
// puzzle PDF of the same stem.
var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// Pipeline turns raw puzzle scans into benchmark files: clues from the
// PDF, answers from the matching solution image.
type Pipeline struct {
	reader *AnswerReader
}

// NewPipeline creates a pipeline using the given answer reader. A nil
// reader extracts clues only.
func NewPipeline(reader *AnswerReader) *Pipeline {
	return &Pipeline{reader: reader}
}

// Run processes every PDF in rawDir and writes one benchmark JSON file
// per puzzle into benchmarkDir. It returns the written paths.
func (p *Pipeline) Run(ctx context.Context, rawDir, benchmarkDir string) ([]string, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw directory: %w", err)
	}

	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, e.Name())
		}
	}
	sort.Strings(pdfs)
	if len(pdfs) == 0 {
		return nil, fmt.Errorf("no puzzle PDFs in %s", rawDir)
	}

	if err := os.MkdirAll(benchmarkDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create benchmark directory: %w", err)
	}

	var written []string
	for _, name := range pdfs {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		outPath, err := p.processOne(ctx, rawDir, benchmarkDir, name)
		if err != nil {
			slog.Error("puzzle extraction failed", "pdf", name, "error", err)
			continue
		}
		written = append(written, outPath)
	}

	if len(written) == 0 {
		return nil, fmt.Errorf("no puzzles extracted from %s", rawDir)
	}
	return written, nil
}

func (p *Pipeline) processOne(ctx context.Context, rawDir, benchmarkDir, pdfName string) (string, error) {
	stem := strings.TrimSuffix(pdfName, filepath.Ext(pdfName))

	puzzle, err := ExtractPuzzle(filepath.Join(rawDir, pdfName))
	if err != nil {
		return "", err
	}

	if p.reader != nil {
		imagePath := findSolutionImage(rawDir, stem)
		if imagePath == "" {
			slog.Warn("no solution image found, writing clues only", "pdf", pdfName)
		} else {
			answers, err := p.reader.Read(ctx, puzzle, imagePath)
			if err != nil {
				return "", fmt.Errorf("reading answers for %s: %w", pdfName, err)
			}
			Merge(puzzle, answers)
		}
	}

	data, err := json.MarshalIndent(puzzle, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal puzzle: %w", err)
	}

	outPath := filepath.Join(benchmarkDir, stem+".json")
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write puzzle file: %w", err)
	}

	slog.Info("wrote benchmark file", "path", outPath, "clues", puzzle.ClueCount())
	return outPath, nil
}

func findSolutionImage(rawDir, stem string) string {
	for _, ext := range imageExts {
		for _, suffix := range []string{"-solution", "_solution", ""} {
			path := filepath.Join(rawDir, stem+suffix+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
