package llm

type clientConfig struct {
	apiKey      string
	baseURL     string
	model       string
	temperature *float64
}

// Option configures an LLM client.
type Option func(*clientConfig)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithBaseURL sets a non-default API endpoint, e.g. a locally hosted
// OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithModel sets the default model for requests that do not name one.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *clientConfig) {
		c.temperature = &t
	}
}
