package storytree

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Genre is composed from four parts, e.g. "Bleak Cosmic Horror of Identity story".
type Genre struct {
	Tone     string `json:"tone"`
	Modifier string `json:"modifier"`
	Core     string `json:"core"`
	Theme    string `json:"theme"`
}

func (g Genre) String() string {
	return fmt.Sprintf("%s %s %s of %s story",
		strings.TrimSpace(g.Tone),
		strings.TrimSpace(g.Modifier),
		strings.TrimSpace(g.Core),
		strings.TrimSpace(g.Theme))
}

// Catalog lists the genre parts offered to readers.
type Catalog struct {
	Tone     []string `json:"tone"`
	Core     []string `json:"core"`
	Modifier []string `json:"modifier"`
	Theme    []string `json:"theme"`
}

// GenreCatalog is the default catalog.
var GenreCatalog = Catalog{
	Tone: []string{
		"Dark", "Hopeful", "Bleak", "Whimsical", "Gritty", "Satirical", "Mythic", "Surreal",
	},
	Core: []string{
		"Action", "Adventure", "Comedy", "Drama", "Fantasy", "Science Fiction",
		"Horror", "Mystery", "Thriller", "Romance", "Crime", "Historical",
		"Western", "War", "Myth", "Slice of Life", "Speculative", "Experimental",
	},
	Modifier: []string{
		"Noir", "Epic", "Psychological", "Cosmic", "Urban", "Post-Apocalyptic", "Mythpunk", "Cyber",
	},
	Theme: []string{
		"Redemption", "Survival", "Identity", "Rebellion", "Love", "Decay", "Transcendence", "Power",
	},
}

// Contains reports whether every part of g is listed in c.
func (c Catalog) Contains(g Genre) bool {
	return slices.Contains(c.Tone, g.Tone) &&
		slices.Contains(c.Modifier, g.Modifier) &&
		slices.Contains(c.Core, g.Core) &&
		slices.Contains(c.Theme, g.Theme)
}

const (
	minTopicLen     = 10
	maxTopicLen     = 200
	minGenrePartLen = 3
)

// StartRequest is what a reader submits to begin a story.
type StartRequest struct {
	Topic string `json:"topic"`
	Genre
}

// Validate reports every problem with r at once, wrapped in ErrInvalidInput.
func (r StartRequest) Validate() error {
	var problems []string

	topicLen := utf8.RuneCountInString(strings.TrimSpace(r.Topic))
	switch {
	case topicLen < minTopicLen:
		problems = append(problems, fmt.Sprintf("topic must be at least %d characters", minTopicLen))
	case topicLen > maxTopicLen:
		problems = append(problems, fmt.Sprintf("topic must not exceed %d characters", maxTopicLen))
	}

	parts := []struct{ name, value string }{
		{"tone", r.Tone},
		{"core", r.Core},
		{"modifier", r.Modifier},
		{"theme", r.Theme},
	}
	for _, p := range parts {
		if utf8.RuneCountInString(strings.TrimSpace(p.value)) < minGenrePartLen {
			problems = append(problems, fmt.Sprintf("%s should not be empty", p.name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
