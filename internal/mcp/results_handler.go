package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/crypticbench/crypticbench/internal/dashboard"
	"github.com/crypticbench/crypticbench/internal/server"
)

func registerResultTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// get_results
	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve saved benchmark results, optionally filtered by model"),
		mcp.WithString("model",
			mcp.Description("Model identifier to filter by (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	// build_dashboard
	dashboardTool := mcp.NewTool("build_dashboard",
		mcp.WithDescription("Aggregate saved results into the leaderboard snapshot"),
		mcp.WithString("output_file",
			mcp.Description("Path to write the snapshot JSON to (optional, returns it inline if omitted)"),
		),
	)
	s.AddTool(dashboardTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleBuildDashboard(ctx, request, sc)
	})

	return nil
}

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if model, ok := args["model"].(string); ok && model != "" {
		records, err := sc.Store.Load(model)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load results for %q: %v", model, err)), nil
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	models, err := sc.Store.Models()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list stored models: %v", err)), nil
	}

	all := make(map[string]any)
	for _, model := range models {
		records, err := sc.Store.Load(model)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load results for %q: %v", model, err)), nil
		}
		all[model] = records
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleBuildDashboard(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	snapshot, err := dashboard.NewAggregator(sc.Store).Build()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build dashboard: %v", err)), nil
	}

	if outputFile, ok := args["output_file"].(string); ok && outputFile != "" {
		if err := snapshot.WriteFile(outputFile); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to write snapshot: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("dashboard snapshot with %d results written to %s",
			snapshot.TotalResults, outputFile)), nil
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal snapshot: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
