package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crypticbench/crypticbench/internal/llm"
	"github.com/crypticbench/crypticbench/internal/results"
)

// RunLog is the full per-run artifact written alongside the result
// store. It keeps every sample's raw response so a run can be audited
// or re-saved later without re-querying the model.
type RunLog struct {
	RunID            string         `json:"run_id"`
	Timestamp        time.Time      `json:"timestamp"`
	Model            string         `json:"model"`
	Task             string         `json:"task"`
	EvalVersion      string         `json:"eval_version,omitempty"`
	FrameworkVersion string         `json:"framework_version,omitempty"`
	ModelArgs        map[string]any `json:"model_args,omitempty"`
	DatasetFiles     []string       `json:"dataset_files"`
	Samples          []SampleResult `json:"samples"`
	Usage            llm.TokenUsage `json:"usage"`
	DurationSeconds  float64        `json:"duration_seconds"`
}

// SampleResult records the outcome of a single clue.
type SampleResult struct {
	ID       string `json:"id"`
	Target   string `json:"target"`
	Response string `json:"response,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Correct  bool   `json:"correct"`
	Error    string `json:"error,omitempty"`
}

// Completed counts samples that produced a response, errored ones excluded.
func (l *RunLog) Completed() int {
	n := 0
	for _, s := range l.Samples {
		if s.Error == "" {
			n++
		}
	}
	return n
}

// Accuracy returns the fraction of completed samples answered correctly.
func (l *RunLog) Accuracy() float64 {
	completed := l.Completed()
	if completed == 0 {
		return 0
	}
	correct := 0
	for _, s := range l.Samples {
		if s.Error == "" && s.Correct {
			correct++
		}
	}
	return float64(correct) / float64(completed)
}

// Record converts the run log into a result record, with logPath stored
// so the dashboard can link back to the full artifact.
func (l *RunLog) Record(logPath string) results.Record {
	completed := l.Completed()
	accuracy := l.Accuracy()

	rec := results.Record{
		RunID:     l.RunID,
		Timestamp: l.Timestamp,
		Model:     l.Model,
		Task:      l.Task,
		Samples: results.Samples{
			Total:     len(l.Samples),
			Completed: completed,
		},
		Metrics: map[string]float64{
			results.MetricAccuracy: accuracy,
			results.MetricStderr:   Stderr(accuracy, completed),
		},
		ModelArgs: l.ModelArgs,
		Metadata: results.Metadata{
			DatasetFiles:     l.DatasetFiles,
			EvalVersion:      l.EvalVersion,
			FrameworkVersion: l.FrameworkVersion,
			LogFile:          logPath,
		},
	}

	if l.Usage.TotalTokens > 0 {
		rec.Usage = &results.Usage{
			InputTokens:     l.Usage.InputTokens,
			OutputTokens:    l.Usage.OutputTokens,
			TotalTokens:     l.Usage.TotalTokens,
			ReasoningTokens: l.Usage.ReasoningTokens,
		}
	}

	return rec
}

// WriteFile writes the run log as pretty-printed JSON under dir and
// returns the file path.
func (l *RunLog) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	data, err := json.MarshalIndent(l, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run log: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.json", l.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run log: %w", err)
	}
	return path, nil
}

// LoadRunLog reads a run log previously written by WriteFile.
func LoadRunLog(path string) (*RunLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}

	var log RunLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to parse run log %s: %w", path, err)
	}
	if log.RunID == "" {
		return nil, fmt.Errorf("run log %s has no run_id", path)
	}
	return &log, nil
}
