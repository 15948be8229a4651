package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPuzzle(t *testing.T) {
	puzzle, err := LoadPuzzle(filepath.Join("testdata", "puzzles", "crossword-cryptic-20260109.json"))
	require.NoError(t, err)

	assert.Equal(t, "Times Cryptic", puzzle.Metadata.PuzzleName)
	assert.Len(t, puzzle.Across, 3)
	assert.Len(t, puzzle.Down, 2)
	assert.Equal(t, 5, puzzle.ClueCount())

	clue := puzzle.Across["1"]
	assert.Equal(t, []int{3, 5}, clue.AnswerLength)
	assert.Equal(t, "RIOBRAVO", clue.Answer)
}

func TestLoadDir(t *testing.T) {
	files, err := LoadDir(filepath.Join("testdata", "puzzles"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 5, files[0].Puzzle.ClueCount())
}

func TestLoadDirRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestSamplesOrderAndContent(t *testing.T) {
	files, err := LoadDir(filepath.Join("testdata", "puzzles"))
	require.NoError(t, err)

	samples := files[0].Samples()
	require.Len(t, samples, 5)

	// Across first in numeric order, then down.
	assert.Equal(t, "crossword-cryptic-20260109_across_1", samples[0].ID)
	assert.Equal(t, "crossword-cryptic-20260109_across_5", samples[1].ID)
	assert.Equal(t, "crossword-cryptic-20260109_across_9", samples[2].ID)
	assert.Equal(t, "crossword-cryptic-20260109_down_1", samples[3].ID)
	assert.Equal(t, "crossword-cryptic-20260109_down_2", samples[4].ID)

	assert.Contains(t, samples[0].Prompt, "Western river")
	assert.Contains(t, samples[0].Prompt, "3-5 letters")
	assert.Equal(t, "RIOBRAVO", samples[0].Target)
}

func TestSamplesSkipUnanswered(t *testing.T) {
	pf := PuzzleFile{
		Path: "mini.json",
		Puzzle: &Puzzle{
			Across: map[string]Clue{
				"1": {Clue: "Solved", AnswerLength: []int{4}, Answer: "APSE"},
				"2": {Clue: "Unsolved", AnswerLength: []int{4}},
			},
		},
	}
	samples := pf.Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, "mini_across_1", samples[0].ID)
}

func TestLengthHint(t *testing.T) {
	assert.Equal(t, "8 letters", LengthHint([]int{8}))
	assert.Equal(t, "4-3-5 letters", LengthHint([]int{4, 3, 5}))
}

func TestLoadEmbeddedTask(t *testing.T) {
	task, err := LoadTask("cryptic-crossword", "")
	require.NoError(t, err)

	assert.Equal(t, "cryptic_crossword", task.Name)
	assert.Equal(t, "0.1.0", task.Version)
	assert.Contains(t, task.Prompt.SystemMessage, "cryptic crossword")
	assert.Equal(t, filepath.Join("data", "benchmark"), task.BenchmarkDir)
}

func TestLoadTaskExternalDirWins(t *testing.T) {
	dir := t.TempDir()
	taskDir := filepath.Join(dir, "cryptic-crossword")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))
	config := "name: custom\nprompt:\n  system_message: Solve it.\n"
	require.NoError(t, os.WriteFile(filepath.Join(taskDir, "config.yaml"), []byte(config), 0o644))

	task, err := LoadTask("cryptic-crossword", dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", task.Name)
}

func TestLoadNonexistentTask(t *testing.T) {
	_, err := LoadTask("nonexistent-task", "")
	assert.Error(t, err)
}

func TestListTasks(t *testing.T) {
	names, err := ListTasks("")
	require.NoError(t, err)
	assert.Contains(t, names, "cryptic-crossword")
}
