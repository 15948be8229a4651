package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crypticbench/crypticbench/internal/benchmark"
	"github.com/crypticbench/crypticbench/internal/llm"
	"github.com/crypticbench/crypticbench/internal/results"
	"github.com/crypticbench/crypticbench/internal/runner"
	"github.com/crypticbench/crypticbench/internal/server"
)

const defaultTask = "cryptic-crossword"

func handleRunEval(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	model, ok := args["model"].(string)
	if !ok || model == "" {
		return mcp.NewToolResultError("model is required"), nil
	}

	taskName, _ := args["task"].(string)
	if taskName == "" {
		taskName = defaultTask
	}
	task, err := benchmark.LoadTask(taskName, sc.TaskDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load task: %v", err)), nil
	}

	puzzles, err := loadRequestedPuzzles(args, sc.BenchmarkDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	temperature, _ := args["temperature"].(float64)
	limit, _ := args["limit"].(float64)
	force, _ := args["force"].(bool)
	endpoint, _ := args["endpoint"].(string)

	client := sc.LLMClient
	requestModel := ""
	if client == nil {
		var name string
		client, name, err = llm.ForModel(model, endpoint, "")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create LLM client: %v", err)), nil
		}
		requestModel = name
	}

	r := runner.NewRunner(client, task, sc.LogsDir)
	log, logPath, err := r.Run(ctx, puzzles, runner.RunConfig{
		Model:            model,
		RequestModel:     requestModel,
		Temperature:      temperature,
		Limit:            int(limit),
		ModelArgs:        map[string]any{"temperature": temperature},
		FrameworkVersion: sc.Version,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("benchmark run failed: %v", err)), nil
	}

	// The MCP server has no terminal to ask on, so conflicts either
	// overwrite (force) or fail with a hint.
	resolver := results.NewResolver(sc.Store, nil)
	resolver.SetForce(force)
	action, err := resolver.Save(log.Record(logPath))
	if err != nil {
		var conflictErr *results.ConflictResolutionError
		if errors.As(err, &conflictErr) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"a result for this model and settings already exists; pass force=true to overwrite (%v)", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to save result: %v", err)), nil
	}

	summary := map[string]interface{}{
		"run_id":            log.RunID,
		"model":             model,
		"task":              task.Name,
		"accuracy":          log.Accuracy(),
		"samples_completed": log.Completed(),
		"samples_total":     len(log.Samples),
		"result_action":     action.String(),
		"log_file":          logPath,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func loadRequestedPuzzles(args map[string]any, benchmarkDir string) ([]benchmark.PuzzleFile, error) {
	if file, ok := args["benchmark_file"].(string); ok && file != "" {
		path, err := resolveBenchmarkFile(benchmarkDir, file)
		if err != nil {
			return nil, fmt.Errorf("invalid benchmark_file: %v", err)
		}
		puzzle, err := benchmark.LoadPuzzle(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load puzzle: %v", err)
		}
		return []benchmark.PuzzleFile{{Path: path, Puzzle: puzzle}}, nil
	}

	puzzles, err := benchmark.LoadDir(benchmarkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load puzzles: %v", err)
	}
	return puzzles, nil
}
