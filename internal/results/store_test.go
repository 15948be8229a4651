package results

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	records, err := store.Load("anthropic/claude-sonnet-4-20250514")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreAppendAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())
	model := "anthropic/claude-sonnet-4-20250514"

	require.NoError(t, store.Append(model, testRecord("run-1", 30, 51)))
	require.NoError(t, store.Append(model, testRecord("run-2", 51, 51)))

	records, err := store.Load(model)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, "run-2", records[1].RunID)
	assert.Equal(t, 51, records[1].Samples.Completed)

	// One line per record on disk.
	data, err := os.ReadFile(store.Path(model))
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func TestStoreReplacePreservesPositions(t *testing.T) {
	store := NewStore(t.TempDir())
	model := "openai/gpt-4o"

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Append(model, testRecord(fmt.Sprintf("run-%d", i), 30, 51)))
	}

	replacement := testRecord("run-new", 51, 51)
	require.NoError(t, store.Replace(model, 1, replacement))

	records, err := store.Load(model)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, "run-new", records[1].RunID)
	assert.Equal(t, "run-3", records[2].RunID)
}

func TestStoreReplaceOutOfRange(t *testing.T) {
	store := NewStore(t.TempDir())
	model := "openai/gpt-4o"
	require.NoError(t, store.Append(model, testRecord("run-1", 30, 51)))

	assert.Error(t, store.Replace(model, 1, testRecord("run-2", 51, 51)))
	assert.Error(t, store.Replace(model, -1, testRecord("run-2", 51, 51)))
}

func TestStoreLoadCorruptJSON(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	model := "openai/gpt-4o"

	require.NoError(t, store.Append(model, testRecord("run-1", 30, 51)))

	f, err := os.OpenFile(store.Path(model), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := store.Load(model)
	require.Error(t, err)
	assert.Nil(t, records, "a corrupt store must not yield a partial list")

	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, 2, corrupt.Line)
}

func TestStoreLoadCompletedExceedsTotal(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	model := "openai/gpt-4o"

	line := `{"run_id":"run-1","timestamp":"2026-01-10T12:00:00Z","model":"openai/gpt-4o",` +
		`"task":"cryptic_crossword","samples":{"total":51,"completed":60},` +
		`"metrics":{"accuracy":0.5,"stderr":0.07},"metadata":{"dataset_files":["a.json"],` +
		`"eval_version":"0.1.0","framework_version":"test","log_file":"logs/run-1.json"}}`
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(store.Path(model), []byte(line+"\n"), 0o644))

	_, err := store.Load(model)
	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, corrupt.Err.Error(), "out of range")
}

func TestStoreAtomicWriteFailureKeepsPreImage(t *testing.T) {
	store := NewStore(t.TempDir())
	model := "openai/gpt-4o"

	require.NoError(t, store.Append(model, testRecord("run-1", 30, 51)))
	before, err := os.ReadFile(store.Path(model))
	require.NoError(t, err)

	renameFile = func(oldpath, newpath string) error {
		return errors.New("simulated rename failure")
	}
	defer func() { renameFile = os.Rename }()

	err = store.Append(model, testRecord("run-2", 51, 51))
	var atomic *AtomicWriteError
	require.ErrorAs(t, err, &atomic)

	after, err := os.ReadFile(store.Path(model))
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed write must leave the store exactly as before")

	// No temp files left behind.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(store.Path(model)), entries[0].Name())
}

func TestStoreFilesSorted(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Append("openai/gpt-4o", testRecord("run-1", 30, 51)))
	require.NoError(t, store.Append("anthropic/claude-sonnet-4", testRecord("run-2", 30, 51)))

	files, err := store.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "anthropic_claude-sonnet-4.jsonl", filepath.Base(files[0]))
	assert.Equal(t, "openai_gpt-4o.jsonl", filepath.Base(files[1]))
}

func TestStoreModels(t *testing.T) {
	store := NewStore(t.TempDir())

	recA := testRecord("run-1", 30, 51)
	recA.Model = "openai/gpt-4o"
	require.NoError(t, store.Append(recA.Model, recA))

	recB := testRecord("run-2", 51, 51)
	recB.Model = "anthropic/claude-sonnet-4"
	require.NoError(t, store.Append(recB.Model, recB))

	// The filename mapping flattens '/' to '_', so the IDs must come
	// back from the records, not the paths.
	models, err := store.Models()
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic/claude-sonnet-4", "openai/gpt-4o"}, models)
}

func TestStoreModelsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))
	models, err := store.Models()
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestStoreFilesMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))
	files, err := store.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
