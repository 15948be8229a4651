// Package runner executes a benchmark task against an LLM and produces
// run logs and result records.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crypticbench/crypticbench/internal/benchmark"
	"github.com/crypticbench/crypticbench/internal/llm"
)

// ProgressFunc is called to report progress during a run.
type ProgressFunc func(model string, sampleIndex, totalSamples int)

// RunConfig holds the per-run parameters.
type RunConfig struct {
	// Model is the full "provider/name" identifier recorded in results.
	Model string

	// RequestModel is the model name sent to the API. Defaults to Model
	// when empty.
	RequestModel string

	Temperature float64
	MaxTokens   int

	// Limit caps the number of samples; 0 means all.
	Limit int

	// ModelArgs are recorded on the result and distinguish otherwise
	// identical runs (e.g. different temperatures).
	ModelArgs map[string]any

	FrameworkVersion string
}

// Runner executes a task's samples against an LLM client.
type Runner struct {
	client   llm.Client
	task     *benchmark.Task
	logsDir  string
	progress ProgressFunc
}

// NewRunner creates a runner writing run logs under logsDir.
func NewRunner(client llm.Client, task *benchmark.Task, logsDir string) *Runner {
	return &Runner{
		client:  client,
		task:    task,
		logsDir: logsDir,
	}
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// Run evaluates every sample from the given puzzles sequentially and
// writes a run log. Samples that fail are recorded with their error and
// excluded from the completed count. Cancellation stops the run between
// samples; everything answered so far is still written out.
func (r *Runner) Run(ctx context.Context, puzzles []benchmark.PuzzleFile, cfg RunConfig) (*RunLog, string, error) {
	if cfg.Model == "" {
		return nil, "", fmt.Errorf("no model specified for run")
	}
	if len(puzzles) == 0 {
		return nil, "", fmt.Errorf("no puzzles to evaluate")
	}

	var samples []benchmark.Sample
	files := make([]string, 0, len(puzzles))
	for _, p := range puzzles {
		samples = append(samples, p.Samples()...)
		files = append(files, p.Path)
	}
	if cfg.Limit > 0 && cfg.Limit < len(samples) {
		samples = samples[:cfg.Limit]
	}
	if len(samples) == 0 {
		return nil, "", fmt.Errorf("puzzles contain no answered clues")
	}

	requestModel := cfg.RequestModel
	if requestModel == "" {
		requestModel = cfg.Model
	}

	start := time.Now()
	log := &RunLog{
		RunID:            uuid.NewString(),
		Timestamp:        start,
		Model:            cfg.Model,
		Task:             r.task.Name,
		EvalVersion:      r.task.Version,
		FrameworkVersion: cfg.FrameworkVersion,
		ModelArgs:        cfg.ModelArgs,
		DatasetFiles:     files,
		Samples:          make([]SampleResult, 0, len(samples)),
	}

	slog.Info("starting benchmark run",
		"run_id", log.RunID,
		"model", cfg.Model,
		"task", r.task.Name,
		"samples", len(samples),
	)

	for i, sample := range samples {
		if err := ctx.Err(); err != nil {
			slog.Warn("run cancelled", "model", cfg.Model, "completed", i, "total", len(samples))
			break
		}

		if r.progress != nil {
			r.progress(cfg.Model, i+1, len(samples))
		}

		result := SampleResult{ID: sample.ID, Target: sample.Target}

		resp, err := r.client.ChatCompletion(ctx, llm.ChatRequest{
			Model:         requestModel,
			SystemMessage: r.task.Prompt.SystemMessage,
			UserMessage:   sample.Prompt,
			Temperature:   cfg.Temperature,
			MaxTokens:     cfg.MaxTokens,
		})
		if err != nil {
			slog.Error("sample execution failed", "sample_id", sample.ID, "error", err)
			result.Error = err.Error()
			log.Samples = append(log.Samples, result)
			continue
		}

		result.Response = resp.Content
		result.Answer = NormalizeAnswer(resp.Content)
		result.Correct = result.Answer == NormalizeAnswer(sample.Target)
		log.Samples = append(log.Samples, result)
		log.Usage.Add(resp.Usage)
	}

	log.DurationSeconds = time.Since(start).Seconds()

	logPath, err := log.WriteFile(r.logsDir)
	if err != nil {
		return nil, "", err
	}

	slog.Info("benchmark run complete",
		"run_id", log.RunID,
		"completed", log.Completed(),
		"total", len(log.Samples),
		"accuracy", log.Accuracy(),
		"log_file", logPath,
	)

	return log, logPath, nil
}
