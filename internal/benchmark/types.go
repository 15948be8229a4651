package benchmark

// Puzzle is one extracted crossword: metadata plus the across and down
// clue sets, keyed by clue number. This is the on-disk format of the
// benchmark JSON files produced by the extraction pipeline.
type Puzzle struct {
	Metadata PuzzleMetadata  `json:"metadata"`
	Across   map[string]Clue `json:"across"`
	Down     map[string]Clue `json:"down"`
}

// PuzzleMetadata identifies the source puzzle.
type PuzzleMetadata struct {
	PuzzleName string `json:"puzzle_name,omitempty"`
	Date       string `json:"date,omitempty"`
}

// Clue is a single cryptic clue. AnswerLength holds the word lengths from
// the enumeration, e.g. "(4,3)" -> [4, 3]. Answer is empty until the
// answer-extraction step fills it in.
type Clue struct {
	Clue         string `json:"clue"`
	AnswerLength []int  `json:"answer_length"`
	Answer       string `json:"answer"`
}

// Sample is one evaluation item: a prompt for a single clue and its
// expected answer.
type Sample struct {
	ID           string
	Prompt       string
	Target       string
	ClueNumber   string
	Direction    string
	AnswerLength []int
}

// ClueCount returns the total number of clues in the puzzle.
func (p *Puzzle) ClueCount() int {
	return len(p.Across) + len(p.Down)
}
