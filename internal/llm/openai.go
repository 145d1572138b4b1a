package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// structuredHint is appended to prompts when the caller expects
// machine-parseable output. Models routinely ignore response-format
// parameters on OpenAI-compatible gateways, so the hint goes in-band and the
// normalizer cleans up whatever comes back.
const structuredHint = "\n\nReturn ONLY valid JSON. No markdown, no code fences, no commentary."

// OpenAIClient implements Client using the official openai-go SDK (chat
// completions). A custom base URL points it at any OpenAI-compatible
// endpoint, including Gemini's compatibility layer.
type OpenAIClient struct {
	model       string
	temperature float64
	maxTokens   int
	opts        []option.RequestOption
}

// NewOpenAIClient validates settings and builds a client.
func NewOpenAIClient(cfg Settings) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key missing; set llm.api_key or DOCFORGE_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		opts:        opts,
	}, nil
}

// Invoke sends a single-turn completion request and returns the raw text.
func (c *OpenAIClient) Invoke(ctx context.Context, prompt string, structured bool) (string, error) {
	client := openai.NewClient(c.opts...)

	if structured {
		prompt += structuredHint
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
