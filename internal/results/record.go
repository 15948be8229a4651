package results

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is the canonical outcome of one evaluation run. Records are
// persisted one per line in a per-model store file.
type Record struct {
	RunID     string             `json:"run_id"`
	Timestamp time.Time          `json:"timestamp"`
	Model     string             `json:"model"`
	Task      string             `json:"task"`
	Samples   Samples            `json:"samples"`
	Metrics   map[string]float64 `json:"metrics"`
	ModelArgs map[string]any     `json:"model_args,omitempty"`
	Usage     *Usage             `json:"usage,omitempty"`
	Metadata  Metadata           `json:"metadata"`
}

// Samples holds the sample counts for a run.
type Samples struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Usage holds token consumption for a run. CostUSD is nil when no pricing
// is known for the model.
type Usage struct {
	InputTokens     int      `json:"input_tokens"`
	OutputTokens    int      `json:"output_tokens"`
	TotalTokens     int      `json:"total_tokens"`
	ReasoningTokens int      `json:"reasoning_tokens"`
	CostUSD         *float64 `json:"cost_usd"`
}

// Metadata holds provenance for a run: which benchmark files were used and
// which versions produced the result.
type Metadata struct {
	DatasetFiles     []string `json:"dataset_files"`
	EvalVersion      string   `json:"eval_version"`
	FrameworkVersion string   `json:"framework_version"`
	LogFile          string   `json:"log_file"`
}

// Metric names every record must carry.
const (
	MetricAccuracy = "accuracy"
	MetricStderr   = "stderr"
)

// Validate checks the structural invariants of a record. A record that
// fails validation must never be persisted, and a persisted line that
// fails validation makes the whole store load fail.
func (r *Record) Validate() error {
	if r.RunID == "" {
		return fmt.Errorf("missing run_id")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("missing timestamp")
	}
	if r.Model == "" {
		return fmt.Errorf("missing model")
	}
	if r.Task == "" {
		return fmt.Errorf("missing task")
	}
	if r.Samples.Total < 0 {
		return fmt.Errorf("samples.total is negative")
	}
	if r.Samples.Completed < 0 || r.Samples.Completed > r.Samples.Total {
		return fmt.Errorf("samples.completed %d out of range [0, %d]", r.Samples.Completed, r.Samples.Total)
	}
	if _, ok := r.Metrics[MetricAccuracy]; !ok {
		return fmt.Errorf("missing %s metric", MetricAccuracy)
	}
	if _, ok := r.Metrics[MetricStderr]; !ok {
		return fmt.Errorf("missing %s metric", MetricStderr)
	}
	return nil
}

// Accuracy returns the accuracy metric.
func (r *Record) Accuracy() float64 {
	return r.Metrics[MetricAccuracy]
}

// Stderr returns the standard error of the accuracy metric.
func (r *Record) Stderr() float64 {
	return r.Metrics[MetricStderr]
}

// IdentityKey returns the string that decides whether two runs are "the
// same" test: model, task, model arguments and the sorted set of dataset
// files. Two records with different model_args are never duplicates even
// when everything else matches.
func (r *Record) IdentityKey() string {
	files := append([]string(nil), r.Metadata.DatasetFiles...)
	sort.Strings(files)

	// json.Marshal sorts map keys, so the args portion is canonical
	// regardless of how the map was built.
	args := ""
	if len(r.ModelArgs) > 0 {
		data, err := json.Marshal(r.ModelArgs)
		if err == nil {
			args = string(data)
		}
	}

	return strings.Join([]string{r.Model, r.Task, args, strings.Join(files, ",")}, "|")
}
