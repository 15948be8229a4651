package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter is a DecisionProvider that asks the user on an
// interactive terminal. When stdin is not a terminal it refuses with
// ErrNoTerminal instead of hanging, so headless saves fail fast with a
// ConflictResolutionError.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter creates a prompter reading from stdin and writing
// to stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stderr}
}

// Decide describes the conflict and reads an accept/decline answer. The
// default answer follows the prefer-more-complete recommendation.
func (p *TerminalPrompter) Decide(c Conflict) (Decision, error) {
	if !term.IsTerminal(int(p.in.Fd())) {
		return 0, ErrNoTerminal
	}

	fmt.Fprintf(p.out, "A result for this model/task/args/dataset combination already exists:\n")
	fmt.Fprintf(p.out, "  existing: run %s  %s  %d/%d samples\n",
		shortID(c.Existing.RunID), c.Existing.Timestamp.Format("2006-01-02 15:04"),
		c.Existing.Samples.Completed, c.Existing.Samples.Total)
	fmt.Fprintf(p.out, "  new:      run %s  %s  %d/%d samples\n",
		shortID(c.Candidate.RunID), c.Candidate.Timestamp.Format("2006-01-02 15:04"),
		c.Candidate.Samples.Completed, c.Candidate.Samples.Total)

	defaultAccept := c.Recommendation() == DecisionAccept
	if defaultAccept {
		fmt.Fprintf(p.out, "Override the existing record? [Y/n] ")
	} else {
		fmt.Fprintf(p.out, "The existing record is more complete. Override it anyway? [y/N] ")
	}

	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return DecisionAccept, nil
	case "n", "no":
		return DecisionDecline, nil
	case "":
		if defaultAccept {
			return DecisionAccept, nil
		}
		return DecisionDecline, nil
	default:
		return 0, fmt.Errorf("unrecognized answer %q", strings.TrimSpace(line))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
