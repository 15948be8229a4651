package dashboard

import "strings"

// Pricing holds API list prices in USD per million tokens.
type Pricing struct {
	Input  float64
	Output float64
}

// modelPricing maps model ID prefixes to their list prices. Matched by
// longest prefix so "openai/gpt-4.1" does not fall through to "openai/gpt-4".
var modelPricing = map[string]Pricing{
	// Anthropic
	"anthropic/claude-opus-4":   {Input: 15.0, Output: 75.0},
	"anthropic/claude-sonnet-4": {Input: 3.0, Output: 15.0},
	"anthropic/claude-haiku-4":  {Input: 0.80, Output: 4.0},
	// OpenAI
	"openai/gpt-5":   {Input: 2.0, Output: 8.0},
	"openai/gpt-4o":  {Input: 2.50, Output: 10.0},
	"openai/gpt-4.1": {Input: 2.0, Output: 8.0},
	"openai/o3":      {Input: 2.0, Output: 8.0},
	"openai/o1":      {Input: 15.0, Output: 60.0},
	// Google
	"google/gemini-3":         {Input: 1.25, Output: 10.0},
	"google/gemini-2.5-pro":   {Input: 1.25, Output: 10.0},
	"google/gemini-2.5-flash": {Input: 0.15, Output: 0.60},
	"google/gemini-2.0":       {Input: 0.10, Output: 0.40},
}

// PricingFor returns the pricing for a model by longest-prefix match.
func PricingFor(model string) (Pricing, bool) {
	var best string
	for prefix := range modelPricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return Pricing{}, false
	}
	return modelPricing[best], true
}

// Cost computes the USD cost for a token usage, or nil when no pricing is
// known for the model.
func Cost(model string, inputTokens, outputTokens int) *float64 {
	pricing, ok := PricingFor(model)
	if !ok {
		return nil
	}
	cost := float64(inputTokens)/1_000_000*pricing.Input +
		float64(outputTokens)/1_000_000*pricing.Output
	return &cost
}
