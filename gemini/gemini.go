// Package gemini is a generator.Completer backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/meikuraledutech/storytree/generator"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

var errEmpty = errors.New("gemini: empty response")

// Completer sends prompts to one Gemini model.
type Completer struct {
	client *genai.Client
	model  string
}

var _ generator.Completer = (*Completer)(nil)

// New connects to Gemini with apiKey. An empty model means DefaultModel.
func New(ctx context.Context, apiKey, model string) (*Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Completer{client: client, model: model}, nil
}

// Model returns the model name requests are sent to.
func (c *Completer) Model() string { return c.model }

// Complete asks for a JSON answer to user under the system instruction.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return text(resp)
}

// Close releases the underlying client.
func (c *Completer) Close() error {
	return c.client.Close()
}

// text joins the text parts of the first candidate.
func text(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmpty
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errEmpty
	}
	return b.String(), nil
}
