package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// PuzzleFile pairs a loaded puzzle with the path it came from. The path is
// what evaluation records carry as the dataset identity.
type PuzzleFile struct {
	Path   string
	Puzzle *Puzzle
}

// LoadPuzzle reads a single benchmark JSON file.
func LoadPuzzle(path string) (*Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark file: %w", err)
	}
	var p Puzzle
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark file %s: %w", path, err)
	}
	if p.ClueCount() == 0 {
		return nil, fmt.Errorf("benchmark file %s contains no clues", path)
	}
	return &p, nil
}

// LoadDir reads every benchmark JSON file in dir, sorted by filename.
func LoadDir(dir string) ([]PuzzleFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark directory: %w", err)
	}

	var files []PuzzleFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		puzzle, err := LoadPuzzle(path)
		if err != nil {
			return nil, err
		}
		files = append(files, PuzzleFile{Path: path, Puzzle: puzzle})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

const cluePromptTemplate = `Solve this cryptic crossword clue:

Clue: %s
Answer length: %s

Provide only the answer word(s), with no explanation or additional text.`

// Samples expands the puzzle into evaluation samples, across clues first,
// each direction in numeric clue order. Clues without an answer are
// skipped; they cannot be scored.
func (pf PuzzleFile) Samples() []Sample {
	stem := strings.TrimSuffix(filepath.Base(pf.Path), ".json")

	var samples []Sample
	for _, direction := range []string{"across", "down"} {
		clues := pf.Puzzle.Across
		if direction == "down" {
			clues = pf.Puzzle.Down
		}
		for _, num := range sortedClueNumbers(clues) {
			clue := clues[num]
			if clue.Answer == "" {
				continue
			}
			samples = append(samples, Sample{
				ID:           fmt.Sprintf("%s_%s_%s", stem, direction, num),
				Prompt:       fmt.Sprintf(cluePromptTemplate, clue.Clue, LengthHint(clue.AnswerLength)),
				Target:       clue.Answer,
				ClueNumber:   num,
				Direction:    direction,
				AnswerLength: clue.AnswerLength,
			})
		}
	}
	return samples
}

// LengthHint renders an answer-length enumeration for the prompt,
// e.g. [4, 3] -> "4-3 letters".
func LengthHint(lengths []int) string {
	parts := make([]string, len(lengths))
	for i, n := range lengths {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-") + " letters"
}

// sortedClueNumbers orders clue keys numerically, falling back to string
// order for non-numeric keys.
func sortedClueNumbers(clues map[string]Clue) []string {
	nums := make([]string, 0, len(clues))
	for num := range clues {
		nums = append(nums, num)
	}
	sort.Slice(nums, func(i, j int) bool {
		a, errA := strconv.Atoi(nums[i])
		b, errB := strconv.Atoi(nums[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return nums[i] < nums[j]
	})
	return nums
}
