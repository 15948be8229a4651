package dashboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/crypticbench/crypticbench/internal/results"
)

// AggregationInputError is returned when a store file cannot be loaded
// during aggregation. The whole aggregation fails rather than silently
// omitting a model, since a partial dashboard would misrepresent rankings.
type AggregationInputError struct {
	Path string
	Err  error
}

func (e *AggregationInputError) Error() string {
	return fmt.Sprintf("failed to aggregate store file %s: %v", e.Path, e.Err)
}

func (e *AggregationInputError) Unwrap() error { return e.Err }

// Entry is one row of the dashboard: the winning record for a
// (model, task) pair, formatted for presentation.
type Entry struct {
	Model            string         `json:"model"`
	ModelDisplay     string         `json:"model_display"`
	Task             string         `json:"task"`
	Accuracy         float64        `json:"accuracy"`
	Stderr           float64        `json:"stderr"`
	SamplesCompleted int            `json:"samples_completed"`
	SamplesTotal     int            `json:"samples_total"`
	ModelArgs        map[string]any `json:"model_args,omitempty"`
	Timestamp        time.Time      `json:"timestamp"`
	RunID            string         `json:"run_id"`
	InputTokens      int            `json:"input_tokens"`
	OutputTokens     int            `json:"output_tokens"`
	TotalTokens      int            `json:"total_tokens"`
	ReasoningTokens  int            `json:"reasoning_tokens"`
	CostUSD          *float64       `json:"cost_usd"`
}

// Snapshot is the consolidated view artifact consumed by the web layer.
// The presentation layer performs no further ranking or deduplication.
type Snapshot struct {
	GeneratedAt  time.Time `json:"generated_at"`
	TotalResults int       `json:"total_results"`
	Results      []Entry   `json:"results"`
}

// Aggregator reads all per-model stores and produces one ranked snapshot.
// It only ever reads; the stores are never mutated.
type Aggregator struct {
	store *results.Store
}

// NewAggregator creates an aggregator over the given store directory.
func NewAggregator(store *results.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Build produces the snapshot: one winning record per (model, task) pair,
// sorted by accuracy descending. It is a pure function of the stores'
// contents; rerunning it with unchanged stores yields an identical
// snapshot apart from GeneratedAt.
func (a *Aggregator) Build() (*Snapshot, error) {
	files, err := a.store.Files()
	if err != nil {
		return nil, &AggregationInputError{Path: a.store.Dir(), Err: err}
	}

	var all []results.Record
	skipped := 0
	for _, file := range files {
		records, err := a.store.LoadFile(file)
		if err != nil {
			return nil, &AggregationInputError{Path: file, Err: err}
		}
		for _, rec := range records {
			// Only complete runs are ranked; a partially-run model's
			// accuracy is not comparable.
			if rec.Samples.Total > 0 && rec.Samples.Completed == rec.Samples.Total {
				all = append(all, rec)
			} else {
				skipped++
			}
		}
	}
	if skipped > 0 {
		slog.Info("skipped incomplete runs during aggregation", "count", skipped)
	}

	groupKey := func(r results.Record) string { return r.Model + "|" + r.Task }

	// Group by (model, task), keeping first-seen group order so equal
	// accuracies rank deterministically.
	keys := lo.Uniq(lo.Map(all, func(r results.Record, _ int) string { return groupKey(r) }))
	groups := lo.GroupBy(all, groupKey)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		winner := lo.MaxBy(groups[key], betterRecord)
		entries = append(entries, newEntry(winner))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Accuracy > entries[j].Accuracy
	})

	return &Snapshot{
		GeneratedAt:  time.Now().UTC(),
		TotalResults: len(entries),
		Results:      entries,
	}, nil
}

// betterRecord reports whether a should represent its group rather than b:
// higher completed-sample count, ties broken by most recent timestamp.
// Full ties keep the earlier record (MaxBy returns the first maximum).
func betterRecord(a, b results.Record) bool {
	if a.Samples.Completed != b.Samples.Completed {
		return a.Samples.Completed > b.Samples.Completed
	}
	return a.Timestamp.After(b.Timestamp)
}

func newEntry(rec results.Record) Entry {
	e := Entry{
		Model:            rec.Model,
		ModelDisplay:     FormatModelName(rec.Model),
		Task:             rec.Task,
		Accuracy:         rec.Accuracy(),
		Stderr:           rec.Stderr(),
		SamplesCompleted: rec.Samples.Completed,
		SamplesTotal:     rec.Samples.Total,
		ModelArgs:        rec.ModelArgs,
		Timestamp:        rec.Timestamp,
		RunID:            shortRunID(rec.RunID),
	}
	if rec.Usage != nil {
		e.InputTokens = rec.Usage.InputTokens
		e.OutputTokens = rec.Usage.OutputTokens
		e.TotalTokens = rec.Usage.TotalTokens
		e.ReasoningTokens = rec.Usage.ReasoningTokens
		e.CostUSD = rec.Usage.CostUSD
		if e.CostUSD == nil && e.TotalTokens > 0 {
			e.CostUSD = Cost(rec.Model, e.InputTokens, e.OutputTokens)
		}
	}
	return e
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var dateSuffix = regexp.MustCompile(`^(.*)-(\d{8})$`)

// FormatModelName renders a model ID for display: the provider prefix is
// stripped, and a trailing release-date suffix is set apart from the base
// name ("claude-sonnet-4-20250514" -> "claude-sonnet-4 (20250514)").
func FormatModelName(model string) string {
	name := model
	if _, after, found := strings.Cut(model, "/"); found {
		name = after
	}
	if m := dateSuffix.FindStringSubmatch(name); m != nil {
		return m[1] + " (" + m[2] + ")"
	}
	return name
}

// FormatAccuracy renders an accuracy fraction as a one-decimal percentage.
func FormatAccuracy(accuracy float64) string {
	return fmt.Sprintf("%.1f%%", accuracy*100)
}

// WriteFile renders the snapshot as indented JSON for the web dashboard.
func (s *Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
