package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/crypticbench/crypticbench/internal/benchmark"
	"github.com/crypticbench/crypticbench/internal/llm"
)

// DefaultAnswerModel is the vision model used to read solution grids.
const DefaultAnswerModel = "claude-opus-4-5-20251101"

// ImageDescriber answers a prompt about a base64-encoded image.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, req llm.ChatRequest, imageData, mediaType string) (*llm.ChatResponse, error)
}

// ExtractedAnswers is the JSON shape the vision model is asked to emit.
type ExtractedAnswers struct {
	Across map[string]string `json:"across"`
	Down   map[string]string `json:"down"`
}

// AnswerReader fills puzzle answers from a photographed solution page.
type AnswerReader struct {
	client ImageDescriber
	model  string
}

// NewAnswerReader creates a reader using the given vision-capable client.
func NewAnswerReader(client ImageDescriber, model string) *AnswerReader {
	if model == "" {
		model = DefaultAnswerModel
	}
	return &AnswerReader{client: client, model: model}
}

// MediaType returns the MIME type for an image path, or an error for
// unsupported formats.
func MediaType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".gif":
		return "image/gif", nil
	case ".webp":
		return "image/webp", nil
	default:
		return "", fmt.Errorf("unsupported image format: %s", path)
	}
}

// answerPrompt tells the model exactly which clue numbers to read so it
// cannot invent or drop entries silently.
func answerPrompt(puzzle *benchmark.Puzzle) string {
	across := sortedNumbers(puzzle.Across)
	down := sortedNumbers(puzzle.Down)

	var b strings.Builder
	b.WriteString("This image shows the solution grid of a cryptic crossword. ")
	fmt.Fprintf(&b, "Read the answers for %d across clues (numbers %s) and %d down clues (numbers %s). ",
		len(across), strings.Join(across, ", "),
		len(down), strings.Join(down, ", "))
	b.WriteString("Respond with JSON only, in this form:\n")
	b.WriteString(`{"across": {"1": "ANSWER", ...}, "down": {"1": "ANSWER", ...}}` + "\n")
	b.WriteString("Use uppercase letters without spaces or punctuation. Omit any answer you cannot read.")
	return b.String()
}

func sortedNumbers(clues map[string]benchmark.Clue) []string {
	nums := lo.Keys(clues)
	sort.Slice(nums, func(i, j int) bool {
		return numericLess(nums[i], nums[j])
	})
	return nums
}

func numericLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ParseAnswersJSON parses the model's response, tolerating a fenced
// code block around the JSON.
func ParseAnswersJSON(content string) (*ExtractedAnswers, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	var answers ExtractedAnswers
	if err := json.Unmarshal([]byte(content), &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers JSON: %w", err)
	}
	if len(answers.Across) == 0 && len(answers.Down) == 0 {
		return nil, fmt.Errorf("no answers in response")
	}
	return &answers, nil
}

// Read extracts answers from the solution image at imagePath.
func (r *AnswerReader) Read(ctx context.Context, puzzle *benchmark.Puzzle, imagePath string) (*ExtractedAnswers, error) {
	mediaType, err := MediaType(imagePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := r.client.DescribeImage(ctx, llm.ChatRequest{
		Model:       r.model,
		UserMessage: answerPrompt(puzzle),
	}, base64.StdEncoding.EncodeToString(data), mediaType)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}

	answers, err := ParseAnswersJSON(resp.Content)
	if err != nil {
		return nil, err
	}

	slog.Info("extracted answers",
		"image", imagePath,
		"across", len(answers.Across),
		"down", len(answers.Down),
	)

	return answers, nil
}

// Merge copies extracted answers into the puzzle for clue numbers the
// puzzle actually has. Answers for unknown numbers are reported, not
// applied.
func Merge(puzzle *benchmark.Puzzle, answers *ExtractedAnswers) {
	merge := func(clues map[string]benchmark.Clue, found map[string]string, direction string) {
		for num, answer := range found {
			clue, ok := clues[num]
			if !ok {
				slog.Warn("answer for unknown clue", "direction", direction, "number", num)
				continue
			}
			clue.Answer = strings.ToUpper(strings.TrimSpace(answer))
			clues[num] = clue
		}
	}
	merge(puzzle.Across, answers.Across, "across")
	merge(puzzle.Down, answers.Down, "down")
}
