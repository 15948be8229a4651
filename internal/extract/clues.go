// Package extract builds benchmark puzzle files from scanned puzzle
// pages: clue text from PDFs, answers from solution images.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/crypticbench/crypticbench/internal/benchmark"
)

// cluePattern matches a complete clue line: number, clue text, then the
// answer enumeration, e.g. `9 Film about a river (3,5)`.
var cluePattern = regexp.MustCompile(`^(\d+)\s+(.+?)\s+\((\d+(?:[,-]\s*\d+)*)\)$`)

var datePattern = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`)

// ParseAnswerLength parses an enumeration like "3,5" or "4-3" into the
// word lengths of the answer.
func ParseAnswerLength(s string) ([]int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '-'
	})
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty enumeration")
	}

	lengths := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid enumeration %q", s)
		}
		lengths = append(lengths, n)
	}
	return lengths, nil
}

// ParseClues scans lines of a clue section. A clue may wrap across
// lines, so lines are accumulated until the enumeration closes it.
func ParseClues(lines []string) map[string]benchmark.Clue {
	clues := make(map[string]benchmark.Clue)
	var pending string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// A line that is a complete clue on its own always wins, even
		// when an unterminated fragment precedes it.
		candidate := line
		m := cluePattern.FindStringSubmatch(line)
		if m == nil && pending != "" {
			candidate = pending + " " + line
			m = cluePattern.FindStringSubmatch(candidate)
		}
		if m == nil {
			// A new clue number discards any unterminated fragment;
			// anything else either continues the fragment or is noise.
			switch {
			case startsWithNumber(line):
				pending = line
			case pending != "":
				pending = candidate
			}
			continue
		}
		pending = ""

		lengths, err := ParseAnswerLength(m[3])
		if err != nil {
			slog.Warn("skipping clue with bad enumeration", "line", candidate, "error", err)
			continue
		}

		clues[m[1]] = benchmark.Clue{
			Clue:         m[2],
			AnswerLength: lengths,
		}
	}

	return clues
}

func startsWithNumber(line string) bool {
	return len(line) > 0 && line[0] >= '0' && line[0] <= '9'
}

// ExtractPuzzle reads a puzzle page PDF and returns the parsed clues.
// Answers are left empty; they come from the solution image later.
func ExtractPuzzle(path string) (*benchmark.Puzzle, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, columnLines(page.Content().Text)...)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no text extracted from %s", path)
	}

	puzzle := &benchmark.Puzzle{
		Across: make(map[string]benchmark.Clue),
		Down:   make(map[string]benchmark.Clue),
	}

	var acrossLines, downLines []string
	section := ""
	for _, line := range lines {
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "across":
			section = "across"
			continue
		case "down":
			section = "down"
			continue
		}

		switch section {
		case "across":
			acrossLines = append(acrossLines, line)
		case "down":
			downLines = append(downLines, line)
		default:
			// Header area above the clue sections.
			if puzzle.Metadata.PuzzleName == "" && looksLikeTitle(line) {
				puzzle.Metadata.PuzzleName = strings.TrimSpace(line)
			}
			if puzzle.Metadata.Date == "" {
				if m := datePattern.FindString(line); m != "" {
					puzzle.Metadata.Date = m
				}
			}
		}
	}

	puzzle.Across = ParseClues(acrossLines)
	puzzle.Down = ParseClues(downLines)

	if puzzle.ClueCount() == 0 {
		return nil, fmt.Errorf("no clues found in %s", path)
	}

	slog.Info("extracted puzzle",
		"path", path,
		"across", len(puzzle.Across),
		"down", len(puzzle.Down),
	)

	return puzzle, nil
}

func looksLikeTitle(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "crossword") || strings.Contains(lower, "cryptic")
}

// columnLines reconstructs reading order from positioned page text.
// Puzzle pages lay clues out in two columns, so a plain top-to-bottom
// read interleaves them; instead the page splits at its horizontal
// midpoint and each column is read separately.
func columnLines(texts []pdf.Text) []string {
	if len(texts) == 0 {
		return nil
	}

	minX, maxX := texts[0].X, texts[0].X
	for _, t := range texts {
		if t.X < minX {
			minX = t.X
		}
		if t.X > maxX {
			maxX = t.X
		}
	}
	mid := (minX + maxX) / 2

	var left, right []pdf.Text
	for _, t := range texts {
		if t.X < mid {
			left = append(left, t)
		} else {
			right = append(right, t)
		}
	}

	return append(joinColumn(left), joinColumn(right)...)
}

// joinColumn groups fragments sharing a baseline into lines, top of the
// page first. PDF y coordinates grow upward.
func joinColumn(texts []pdf.Text) []string {
	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	const baselineTolerance = 2.0

	var lines []string
	var b strings.Builder
	lastY := 0.0
	for i, t := range texts {
		if i > 0 && lastY-t.Y > baselineTolerance {
			lines = append(lines, strings.TrimSpace(b.String()))
			b.Reset()
		}
		b.WriteString(t.S)
		lastY = t.Y
	}
	if b.Len() > 0 {
		lines = append(lines, strings.TrimSpace(b.String()))
	}
	return lines
}
