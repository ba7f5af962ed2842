package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator is a Generator backed by an OpenAI-compatible chat
// completion endpoint. One instance is bound to one model identifier; the
// ordered fallback across models is handled by Chain.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator for the given model. baseURL is
// optional and overrides the provider endpoint for compatible gateways.
func NewOpenAIGenerator(apiKey, baseURL, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generative API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model identifier is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Model returns the bound model identifier.
func (g *OpenAIGenerator) Model() string { return g.model }

// Generate runs a single chat completion for the prompt.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if isModelNotFound(err) {
			return "", fmt.Errorf("model %q: %w", g.model, ErrModelNotFound)
		}
		return "", fmt.Errorf("model %q: %w", g.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %q: empty completion", g.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// isModelNotFound classifies provider errors that mean "this model id does
// not exist here", as opposed to quota or transport failures.
func isModelNotFound(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.HTTPStatusCode == http.StatusNotFound {
		return true
	}
	if code, ok := apiErr.Code.(string); ok && strings.Contains(code, "model_not_found") {
		return true
	}
	return false
}
