package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/crypticbench/crypticbench/internal/benchmark"
	"github.com/crypticbench/crypticbench/internal/server"
)

func registerBenchmarkTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// list_puzzles
	listTool := mcp.NewTool("list_puzzles",
		mcp.WithDescription("List benchmark puzzle files with clue counts"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListPuzzles(ctx, request, sc)
	})

	// run_eval
	runTool := mcp.NewTool("run_eval",
		mcp.WithDescription("Run the cryptic crossword benchmark against a model and save the result"),
		mcp.WithString("model",
			mcp.Required(),
			mcp.Description("Model identifier as provider/name (e.g. 'openai/gpt-4o')"),
		),
		mcp.WithString("task",
			mcp.Description("Task name (default: 'cryptic-crossword')"),
		),
		mcp.WithString("benchmark_file",
			mcp.Description("Single puzzle file to evaluate (relative to the benchmark directory; default: all)"),
		),
		mcp.WithString("endpoint",
			mcp.Description("OpenAI-compatible endpoint URL for locally hosted models"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Sampling temperature (default: 0)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of clues to evaluate (default: all)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Overwrite an existing result for the same model and settings without asking"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunEval(ctx, request, sc)
	})

	return nil
}

func handleListPuzzles(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	puzzles, err := benchmark.LoadDir(sc.BenchmarkDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load puzzles: %v", err)), nil
	}

	type puzzleInfo struct {
		Path       string `json:"path"`
		PuzzleName string `json:"puzzle_name,omitempty"`
		Date       string `json:"date,omitempty"`
		Across     int    `json:"across"`
		Down       int    `json:"down"`
		Answered   int    `json:"answered"`
	}

	infos := make([]puzzleInfo, 0, len(puzzles))
	for _, p := range puzzles {
		infos = append(infos, puzzleInfo{
			Path:       p.Path,
			PuzzleName: p.Puzzle.Metadata.PuzzleName,
			Date:       p.Puzzle.Metadata.Date,
			Across:     len(p.Puzzle.Across),
			Down:       len(p.Puzzle.Down),
			Answered:   len(p.Samples()),
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal puzzles: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
