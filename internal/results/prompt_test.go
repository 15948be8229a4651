package results

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPrompterRefusesWithoutTerminal(t *testing.T) {
	// A regular file is not a terminal, so the prompter must refuse
	// instead of blocking on a read.
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte("y\n"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	p := &TerminalPrompter{in: f, out: &out}

	_, err = p.Decide(Conflict{})
	assert.ErrorIs(t, err, ErrNoTerminal)
	assert.Empty(t, out.String())
}
