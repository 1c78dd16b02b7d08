// Package openai is a generator.Completer for any OpenAI-compatible chat
// completions endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/meikuraledutech/storytree/generator"
	openaigo "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

// Config selects the endpoint and model.
type Config struct {
	APIKey  string
	BaseURL string // empty means the public OpenAI API
	Model   string
	Timeout time.Duration
}

// Completer sends prompts as chat completions.
type Completer struct {
	client *openaigo.Client
	model  string
}

var _ generator.Completer = (*Completer)(nil)

// New returns a Completer for cfg.
func New(cfg Config) *Completer {
	oc := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Completer{client: openaigo.NewClientWithConfig(oc), model: model}
}

// Model returns the model name requests are sent to.
func (c *Completer) Model() string { return c.model }

// Complete requests a JSON object answer.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: system},
			{Role: openaigo.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
