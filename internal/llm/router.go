package llm

import (
	"fmt"
	"os"
	"strings"
)

// ForModel returns a client for a "provider/name" model identifier.
// Known providers are "openai" and "anthropic"; API keys come from
// OPENAI_API_KEY and ANTHROPIC_API_KEY respectively. An endpoint
// override forces the OpenAI-compatible client regardless of provider,
// which covers locally hosted models.
func ForModel(model, endpoint, apiKey string) (Client, string, error) {
	provider, name, found := strings.Cut(model, "/")
	if !found {
		return nil, "", fmt.Errorf("model %q must be of the form provider/name", model)
	}
	if name == "" {
		return nil, "", fmt.Errorf("model %q has an empty name", model)
	}

	if endpoint != "" {
		client := NewOpenAIClient(
			WithAPIKey(apiKey),
			WithBaseURL(endpoint),
			WithModel(name),
		)
		return client, name, nil
	}

	switch provider {
	case "openai":
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return NewOpenAIClient(WithAPIKey(apiKey), WithModel(name)), name, nil
	case "anthropic":
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropicClient(WithAPIKey(apiKey), WithModel(name)), name, nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q (use --endpoint for OpenAI-compatible servers)", provider)
	}
}
