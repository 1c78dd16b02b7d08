// Package ollama is a generator.Completer for a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meikuraledutech/storytree/generator"
	"github.com/ollama/ollama/api"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1"
)

// Completer sends prompts to the Ollama chat API.
type Completer struct {
	client *api.Client
	model  string
}

var _ generator.Completer = (*Completer)(nil)

// New returns a Completer for the server at baseURL.
func New(baseURL, model string, timeout time.Duration) (*Completer, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// The native API lives at the root, not under the OpenAI-compatible /v1.
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: parse base url %q: %w", baseURL, err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Completer{
		client: api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Completer) Model() string { return c.model }

// Complete runs one non-streaming chat in JSON mode.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
	}

	var b strings.Builder
	err := c.client.Chat(ctx, req, func(r api.ChatResponse) error {
		b.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: chat: %w", err)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("ollama: empty response")
	}
	return b.String(), nil
}
