package results

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// renameFile is swapped out in tests to simulate a failing atomic swap.
var renameFile = os.Rename

// Store persists Result Records as one newline-delimited JSON file per
// model inside a single results directory. The directory is always passed
// in explicitly; there is no process-wide default. A store file grows by
// append or in-place replace and is never auto-deleted. All mutation is a
// full atomic rewrite, so a concurrent reader sees either the old or the
// new contents, never a partial file.
//
// Store is not safe for concurrent multi-process mutation; callers must
// serialize writes externally.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on the
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the results directory this store was created with.
func (s *Store) Dir() string { return s.dir }

// ModelFilename maps a model identifier to a store filename, normalizing
// every character outside [A-Za-z0-9._-] to an underscore. The mapping is
// deterministic but not reversible.
func ModelFilename(model string) string {
	var b strings.Builder
	b.Grow(len(model))
	for _, r := range model {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".jsonl"
}

// Path returns the store file path for a model.
func (s *Store) Path(model string) string {
	return filepath.Join(s.dir, ModelFilename(model))
}

// Files returns the sorted list of store files present in the results
// directory. A missing directory is an empty store.
func (s *Store) Files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Models returns the model IDs with at least one stored record, in
// store-file order. The filename mapping is not reversible, so each ID
// is taken from the file's first record.
func (s *Store) Models() ([]string, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	var models []string
	for _, file := range files {
		records, err := s.LoadFile(file)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			models = append(models, records[0].Model)
		}
	}
	return models, nil
}

// Load reads the full record sequence for a model, in append order. A
// missing file yields an empty sequence. Any line that fails to parse or
// validate fails the whole load with a *CorruptRecordError; partial reads
// are not permitted.
func (s *Store) Load(model string) ([]Record, error) {
	return s.LoadFile(s.Path(model))
}

// LoadFile reads a store file directly by path. Used by Load and by the
// dashboard aggregation, which iterates all store files.
func (s *Store) LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, &CorruptRecordError{Path: path, Line: line, Err: err}
		}
		if err := rec.Validate(); err != nil {
			return nil, &CorruptRecordError{Path: path, Line: line, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &CorruptRecordError{Path: path, Line: line, Err: err}
	}

	warnDuplicateKeys(path, records)
	return records, nil
}

// warnDuplicateKeys flags pre-existing identity-key collisions. Duplicates
// are legal (the user may have deliberately kept both), so this is a
// warning, not an error.
func warnDuplicateKeys(path string, records []Record) {
	seen := make(map[string]string, len(records))
	for _, rec := range records {
		key := rec.IdentityKey()
		if prev, ok := seen[key]; ok {
			slog.Warn("store contains records with identical identity key",
				"path", path,
				"run_id", rec.RunID,
				"earlier_run_id", prev,
			)
			continue
		}
		seen[key] = rec.RunID
	}
}

// Append adds a record to the end of a model's store.
func (s *Store) Append(model string, rec Record) error {
	records, err := s.Load(model)
	if err != nil {
		return err
	}
	return s.save(model, append(records, rec))
}

// Replace overwrites exactly one existing record in place, preserving the
// position of all others.
func (s *Store) Replace(model string, index int, rec Record) error {
	records, err := s.Load(model)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("replace index %d out of range (store has %d records)", index, len(records))
	}
	records[index] = rec
	return s.save(model, records)
}

// save rewrites the full record sequence durably: serialize to a temp file
// in the same directory, fsync, then rename into place. A crash or failure
// mid-write leaves the previous store file untouched.
func (s *Store) save(model string, records []Record) error {
	path := s.Path(model)

	var buf bytes.Buffer
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("refusing to persist invalid record %s: %w", rec.RunID, err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", rec.RunID, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &AtomicWriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ModelFilename(model)+".tmp-*")
	if err != nil {
		return &AtomicWriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &AtomicWriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &AtomicWriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &AtomicWriteError{Path: path, Err: err}
	}

	if err := renameFile(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &AtomicWriteError{Path: path, Err: err}
	}
	return nil
}
