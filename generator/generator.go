// Package generator implements storytree.Generator on top of a chat-style
// language model. Provider clients live in the gemini, openai and ollama
// packages and only have to implement Completer.
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/meikuraledutech/storytree"
	"github.com/meikuraledutech/storytree/prompts"
	"go.uber.org/zap"
)

// Completer sends one system + user message pair to a model and returns the
// text of its answer.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLM generates story content with a Completer. A reply that does not parse
// is sent back once with a repair request before giving up.
type LLM struct {
	completer Completer
	nav       storytree.Navigator
	logger    *zap.Logger
}

var _ storytree.Generator = (*LLM)(nil)

// New returns an LLM generator.
func New(c Completer, logger *zap.Logger) *LLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLM{completer: c, logger: logger.Named("generator")}
}

// StartStory asks the model for an opening scene.
func (g *LLM) StartStory(ctx context.Context, topic, genre string) (storytree.Opening, error) {
	op, err := complete(ctx, g, prompts.StartSystem, prompts.StartUser(topic, genre), prompts.ParseOpening)
	if err != nil {
		return storytree.Opening{}, err
	}
	if op.Genre == "" {
		op.Genre = genre
	}
	return op, nil
}

// ContinueStory asks the model what follows choice at the current node of s.
func (g *LLM) ContinueStory(ctx context.Context, s *storytree.Story, choice string) (storytree.Continuation, error) {
	path, err := g.nav.PathToRoot(s)
	if err != nil {
		return storytree.Continuation{}, err
	}
	return complete(ctx, g, prompts.ContinueSystem, prompts.ContinueUser(s, path, choice), prompts.ParseContinuation)
}

func complete[T any](ctx context.Context, g *LLM, system, user string, parse func(string) (T, error)) (T, error) {
	var zero T

	raw, err := g.completer.Complete(ctx, system, user)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", storytree.ErrGenerationFailed, err)
	}
	out, err := parse(raw)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, prompts.ErrMalformed) {
		return zero, fmt.Errorf("%w: %w", storytree.ErrGenerationFailed, err)
	}

	g.logger.Warn("Model reply did not parse, asking for a repair", zap.Error(err), zap.Int("bytes", len(raw)))
	raw, err = g.completer.Complete(ctx, system, prompts.JSONRetry(raw))
	if err != nil {
		return zero, fmt.Errorf("%w: repair: %w", storytree.ErrGenerationFailed, err)
	}
	out, err = parse(raw)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", storytree.ErrGenerationFailed, err)
	}
	return out, nil
}
