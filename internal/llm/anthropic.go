package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicClient implements Client using the Anthropic Messages API.
// It also supports image inputs, used for reading answer grids from
// photographed solution pages.
type AnthropicClient struct {
	client      anthropic.Client
	model       string
	temperature *float64
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(opts ...Option) *AnthropicClient {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	requestOpts := []option.RequestOption{}
	if cfg.apiKey != "" {
		requestOpts = append(requestOpts, option.WithAPIKey(cfg.apiKey))
	}
	if cfg.baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(requestOpts...),
		model:       cfg.model,
		temperature: cfg.temperature,
	}
}

// ChatCompletion sends a messages request and returns the text response.
func (c *AnthropicClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req = c.applyDefaults(req)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserMessage)),
		},
	}
	if req.SystemMessage != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemMessage}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("messages request failed: %w", err)
	}

	return responseFromMessage(message)
}

// DescribeImage sends a prompt together with a base64-encoded image and
// returns the text response.
func (c *AnthropicClient) DescribeImage(ctx context.Context, req ChatRequest, imageData, mediaType string) (*ChatResponse, error) {
	req = c.applyDefaults(req)

	imageBlock := anthropic.ContentBlockParamUnion{
		OfImage: &anthropic.ImageBlockParam{
			Source: anthropic.ImageBlockParamSourceUnion{
				OfBase64: &anthropic.Base64ImageSourceParam{
					Data:      imageData,
					MediaType: anthropic.Base64ImageSourceMediaType(mediaType),
				},
			},
		},
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(imageBlock, anthropic.NewTextBlock(req.UserMessage)),
		},
	}
	if req.SystemMessage != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemMessage}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("messages request failed: %w", err)
	}

	return responseFromMessage(message)
}

func (c *AnthropicClient) applyDefaults(req ChatRequest) ChatRequest {
	if req.Model == "" && c.model != "" {
		req.Model = c.model
	}
	if req.Temperature == 0 && c.temperature != nil {
		req.Temperature = *c.temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaultAnthropicMaxTokens
	}
	return req
}

func responseFromMessage(message *anthropic.Message) (*ChatResponse, error) {
	var content string
	for _, block := range message.Content {
		if block.Type == "text" {
			content = block.Text
			break
		}
	}
	if content == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	return &ChatResponse{
		Content: content,
		Usage: TokenUsage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}
