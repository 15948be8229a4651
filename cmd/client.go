package cmd

import (
	"github.com/crypticbench/crypticbench/internal/llm"
)

// visionClientFromFlags creates the Anthropic client used for reading
// answer grids. The API key falls back to ANTHROPIC_API_KEY inside the
// client when empty.
func visionClientFromFlags(apiKey string) *llm.AnthropicClient {
	var opts []llm.Option
	if apiKey != "" {
		opts = append(opts, llm.WithAPIKey(apiKey))
	}
	return llm.NewAnthropicClient(opts...)
}
