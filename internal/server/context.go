package server

import (
	"github.com/crypticbench/crypticbench/internal/llm"
	"github.com/crypticbench/crypticbench/internal/results"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	Store        *results.Store
	LLMClient    llm.Client // optional default client for eval runs
	BenchmarkDir string
	LogsDir      string
	TaskDir      string // external tasks directory (optional)
	Version      string
}
