package extract

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypticbench/crypticbench/internal/benchmark"
	"github.com/crypticbench/crypticbench/internal/llm"
)

func TestParseAnswerLength(t *testing.T) {
	lengths, err := ParseAnswerLength("8")
	require.NoError(t, err)
	assert.Equal(t, []int{8}, lengths)

	lengths, err = ParseAnswerLength("3,5")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, lengths)

	lengths, err = ParseAnswerLength("4-3")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3}, lengths)

	_, err = ParseAnswerLength("")
	require.Error(t, err)

	_, err = ParseAnswerLength("3,x")
	require.Error(t, err)
}

func TestParseClues(t *testing.T) {
	lines := []string{
		"1 Film about a river in Texas (3,5)",
		"4 Church recess found in chapel,",
		"say (4)",
		"Set by Custos", // noise between clues
		"7 Dessert ingredient a painter mixed with gin (8)",
	}

	clues := ParseClues(lines)
	require.Len(t, clues, 3)
	assert.Equal(t, "Film about a river in Texas", clues["1"].Clue)
	assert.Equal(t, []int{3, 5}, clues["1"].AnswerLength)
	assert.Equal(t, "Church recess found in chapel, say", clues["4"].Clue)
	assert.Equal(t, []int{4}, clues["4"].AnswerLength)
	assert.Equal(t, []int{8}, clues["7"].AnswerLength)
}

func TestParseCluesSkipsUnterminatedFragment(t *testing.T) {
	clues := ParseClues([]string{
		"12 A clue that never closes",
		"3 Complete clue (5)",
	})
	require.Len(t, clues, 1)
	assert.Contains(t, clues, "3")
}

func TestColumnLinesSplitsTwoColumns(t *testing.T) {
	// Two columns laid out side by side; a naive top-to-bottom read
	// would interleave them.
	texts := []pdf.Text{
		{X: 50, Y: 700, S: "Across"},
		{X: 50, Y: 680, S: "1 Film about a river "},
		{X: 140, Y: 680, S: "in Texas (3,5)"},
		{X: 320, Y: 700, S: "Down"},
		{X: 320, Y: 680, S: "2 Habit of a monk (6)"},
	}

	lines := columnLines(texts)
	require.Equal(t, []string{
		"Across",
		"1 Film about a river in Texas (3,5)",
		"Down",
		"2 Habit of a monk (6)",
	}, lines)
}

func TestMediaType(t *testing.T) {
	for path, want := range map[string]string{
		"grid.png":      "image/png",
		"grid.JPG":      "image/jpeg",
		"grid.jpeg":     "image/jpeg",
		"solution.webp": "image/webp",
	} {
		got, err := MediaType(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := MediaType("grid.tiff")
	require.Error(t, err)
}

func TestParseAnswersJSON(t *testing.T) {
	answers, err := ParseAnswersJSON(`{"across": {"1": "RIOBRAVO"}, "down": {"2": "RITUAL"}}`)
	require.NoError(t, err)
	assert.Equal(t, "RIOBRAVO", answers.Across["1"])
	assert.Equal(t, "RITUAL", answers.Down["2"])
}

func TestParseAnswersJSONFenced(t *testing.T) {
	content := "```json\n{\"across\": {\"1\": \"RIOBRAVO\"}, \"down\": {}}\n```"
	answers, err := ParseAnswersJSON(content)
	require.NoError(t, err)
	assert.Equal(t, "RIOBRAVO", answers.Across["1"])
}

func TestParseAnswersJSONErrors(t *testing.T) {
	_, err := ParseAnswersJSON("I could not read the grid.")
	require.Error(t, err)

	_, err = ParseAnswersJSON(`{"across": {}, "down": {}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no answers")
}

func TestAnswerPromptNamesClueNumbers(t *testing.T) {
	puzzle := &benchmark.Puzzle{
		Across: map[string]benchmark.Clue{
			"1":  {Clue: "a"},
			"10": {Clue: "b"},
			"4":  {Clue: "c"},
		},
		Down: map[string]benchmark.Clue{"2": {Clue: "d"}},
	}

	prompt := answerPrompt(puzzle)
	assert.Contains(t, prompt, "3 across clues (numbers 1, 4, 10)")
	assert.Contains(t, prompt, "1 down clues (numbers 2)")
	assert.Contains(t, prompt, "JSON")
}

func TestMergeAppliesKnownAnswersOnly(t *testing.T) {
	puzzle := &benchmark.Puzzle{
		Across: map[string]benchmark.Clue{"1": {Clue: "a", AnswerLength: []int{8}}},
		Down:   map[string]benchmark.Clue{"2": {Clue: "b", AnswerLength: []int{6}}},
	}

	Merge(puzzle, &ExtractedAnswers{
		Across: map[string]string{"1": " rio bravo ", "99": "GHOST"},
		Down:   map[string]string{"2": "RITUAL"},
	})

	assert.Equal(t, "RIO BRAVO", puzzle.Across["1"].Answer)
	assert.Equal(t, "RITUAL", puzzle.Down["2"].Answer)
	assert.NotContains(t, puzzle.Across, "99")
}

type stubDescriber struct {
	content   string
	lastReq   llm.ChatRequest
	lastMedia string
	lastData  string
}

func (s *stubDescriber) DescribeImage(_ context.Context, req llm.ChatRequest, imageData, mediaType string) (*llm.ChatResponse, error) {
	s.lastReq = req
	s.lastData = imageData
	s.lastMedia = mediaType
	return &llm.ChatResponse{Content: s.content}, nil
}

func TestAnswerReaderRead(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "solution.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("fake-png-bytes"), 0o644))

	stub := &stubDescriber{content: `{"across": {"1": "RIOBRAVO"}, "down": {}}`}
	reader := NewAnswerReader(stub, "")

	puzzle := &benchmark.Puzzle{
		Across: map[string]benchmark.Clue{"1": {Clue: "a"}},
		Down:   map[string]benchmark.Clue{},
	}

	answers, err := reader.Read(context.Background(), puzzle, imagePath)
	require.NoError(t, err)
	assert.Equal(t, "RIOBRAVO", answers.Across["1"])

	assert.Equal(t, DefaultAnswerModel, stub.lastReq.Model)
	assert.Equal(t, "image/png", stub.lastMedia)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fake-png-bytes")), stub.lastData)
}

func TestFindSolutionImage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crossword-20260109-solution.png"), nil, 0o644))

	assert.Equal(t,
		filepath.Join(dir, "crossword-20260109-solution.png"),
		findSolutionImage(dir, "crossword-20260109"))
	assert.Equal(t, "", findSolutionImage(dir, "crossword-20260116"))
}
