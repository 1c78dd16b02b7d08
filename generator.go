package storytree

import "context"

// Opening is what the generator produced for a new story.
type Opening struct {
	Title      string      `json:"title"`
	Genre      string      `json:"genre"`
	Characters []Character `json:"characters"`
	Narrative  string      `json:"storyline"`
	Choices    []string    `json:"branchingPaths"`
}

// Generator produces narrative text. Implementations should wrap their
// failures in ErrGenerationFailed; Session wraps anything that is not.
type Generator interface {
	// StartStory writes the opening scene for topic in genre.
	StartStory(ctx context.Context, topic, genre string) (Opening, error)
	// ContinueStory writes what happens when choice is taken at the
	// current node of s.
	ContinueStory(ctx context.Context, s *Story, choice string) (Continuation, error)
}
