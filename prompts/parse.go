package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meikuraledutech/storytree"
)

var ErrMalformed = errors.New("prompts: malformed model response")

// ParseOpening decodes a StartSystem answer. The storyline and at least one
// non-blank branching path are required. Blank paths are dropped.
func ParseOpening(raw string) (storytree.Opening, error) {
	var op storytree.Opening
	if err := decode(raw, &op); err != nil {
		return storytree.Opening{}, err
	}
	if strings.TrimSpace(op.Narrative) == "" {
		return storytree.Opening{}, fmt.Errorf("%w: missing storyline", ErrMalformed)
	}
	op.Choices = nonBlank(op.Choices)
	if len(op.Choices) == 0 {
		return storytree.Opening{}, fmt.Errorf("%w: missing branching paths", ErrMalformed)
	}
	return op, nil
}

// ParseContinuation decodes a ContinueSystem answer. An empty list of paths
// is allowed and ends the branch.
func ParseContinuation(raw string) (storytree.Continuation, error) {
	var c storytree.Continuation
	if err := decode(raw, &c); err != nil {
		return storytree.Continuation{}, err
	}
	if strings.TrimSpace(c.StoryPart) == "" {
		return storytree.Continuation{}, fmt.Errorf("%w: missing story part", ErrMalformed)
	}
	return c, nil
}

// nonBlank trims labels and drops the empty ones.
func nonBlank(labels []string) []string {
	out := labels[:0]
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func decode(raw string, v any) error {
	if err := json.Unmarshal([]byte(clean(raw)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// clean strips markdown fences and any text around the outermost object.
func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
