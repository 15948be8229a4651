package dashboard

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypticbench/crypticbench/internal/results"
)

func record(runID, model string, accuracy float64, completed, total int, ts time.Time) results.Record {
	return results.Record{
		RunID:     runID,
		Timestamp: ts,
		Model:     model,
		Task:      "cryptic_crossword",
		Samples:   results.Samples{Total: total, Completed: completed},
		Metrics:   map[string]float64{results.MetricAccuracy: accuracy, results.MetricStderr: 0.05},
		Metadata: results.Metadata{
			DatasetFiles: []string{"data/benchmark/crossword.json"},
			EvalVersion:  "0.1.0",
			LogFile:      "logs/" + runID + ".json",
		},
	}
}

func TestBuildRankingDeterminism(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := results.NewStore(t.TempDir())

	// A and C tie on accuracy; C has the later timestamp but A's store
	// file sorts first, so A keeps its position.
	require.NoError(t, store.Append("anthropic/model-a", record("run-a", "anthropic/model-a", 0.24, 51, 51, base)))
	require.NoError(t, store.Append("openai/model-b", record("run-b", "openai/model-b", 0.13, 51, 51, base)))
	require.NoError(t, store.Append("openai/model-c", record("run-c", "openai/model-c", 0.24, 51, 51, base.Add(time.Hour))))

	snap, err := NewAggregator(store).Build()
	require.NoError(t, err)

	require.Len(t, snap.Results, 3)
	assert.Equal(t, "anthropic/model-a", snap.Results[0].Model)
	assert.Equal(t, "openai/model-c", snap.Results[1].Model)
	assert.Equal(t, "openai/model-b", snap.Results[2].Model)

	assert.Equal(t, "24.0%", FormatAccuracy(snap.Results[0].Accuracy))
}

func TestBuildPicksWinnerByCompletedThenTimestamp(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := results.NewStore(t.TempDir())
	model := "openai/gpt-4o"

	// Same identity group: the dedup winner has the most completed
	// samples; among equally complete runs the most recent wins.
	full := record("run-1", model, 0.30, 51, 51, base)
	fullLater := record("run-2", model, 0.35, 51, 51, base.Add(2*time.Hour))
	require.NoError(t, store.Append(model, full))
	require.NoError(t, store.Append(model, fullLater))

	snap, err := NewAggregator(store).Build()
	require.NoError(t, err)

	require.Len(t, snap.Results, 1)
	assert.Equal(t, "run-2", snap.Results[0].RunID)
	assert.Equal(t, 0.35, snap.Results[0].Accuracy)
}

func TestBuildSkipsIncompleteRuns(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := results.NewStore(t.TempDir())
	model := "openai/gpt-4o"

	require.NoError(t, store.Append(model, record("run-partial", model, 0.90, 30, 51, base)))
	require.NoError(t, store.Append(model, record("run-full", model, 0.40, 51, 51, base)))

	snap, err := NewAggregator(store).Build()
	require.NoError(t, err)

	require.Len(t, snap.Results, 1)
	assert.Equal(t, 0.40, snap.Results[0].Accuracy)
}

func TestBuildIdempotent(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := results.NewStore(t.TempDir())
	require.NoError(t, store.Append("openai/gpt-4o", record("run-1", "openai/gpt-4o", 0.4, 51, 51, base)))
	require.NoError(t, store.Append("anthropic/claude-sonnet-4", record("run-2", "anthropic/claude-sonnet-4", 0.6, 51, 51, base)))

	agg := NewAggregator(store)
	first, err := agg.Build()
	require.NoError(t, err)
	second, err := agg.Build()
	require.NoError(t, err)

	// Identical apart from the generation timestamp.
	second.GeneratedAt = first.GeneratedAt
	assert.Equal(t, first, second)
}

func TestBuildFailsOnCorruptStore(t *testing.T) {
	store := results.NewStore(t.TempDir())
	require.NoError(t, store.Append("openai/gpt-4o", record("run-1", "openai/gpt-4o", 0.4, 51, 51, time.Now())))
	require.NoError(t, os.WriteFile(store.Path("anthropic/claude-sonnet-4"), []byte("{broken\n"), 0o644))

	_, err := NewAggregator(store).Build()
	var inputErr *AggregationInputError
	require.ErrorAs(t, err, &inputErr)
}

func TestBuildEmptyStore(t *testing.T) {
	store := results.NewStore(t.TempDir())
	snap, err := NewAggregator(store).Build()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalResults)
	assert.Empty(t, snap.Results)
}

func TestEntryCostFromPricing(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := results.NewStore(t.TempDir())
	model := "openai/gpt-4o"

	rec := record("run-1", model, 0.4, 51, 51, base)
	rec.Usage = &results.Usage{InputTokens: 1_000_000, OutputTokens: 500_000, TotalTokens: 1_500_000}
	require.NoError(t, store.Append(model, rec))

	snap, err := NewAggregator(store).Build()
	require.NoError(t, err)

	require.Len(t, snap.Results, 1)
	require.NotNil(t, snap.Results[0].CostUSD)
	assert.InDelta(t, 2.50+5.0, *snap.Results[0].CostUSD, 1e-9)
}

func TestFormatModelName(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4 (20250514)", FormatModelName("anthropic/claude-sonnet-4-20250514"))
	assert.Equal(t, "gpt-4o", FormatModelName("openai/gpt-4o"))
	assert.Equal(t, "local-model", FormatModelName("local-model"))
}

func TestPricingLongestPrefixWins(t *testing.T) {
	p, ok := PricingFor("openai/gpt-4.1-2025-04-14")
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Input)

	_, ok = PricingFor("mockllm/model")
	assert.False(t, ok)
}
