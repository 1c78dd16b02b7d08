// Package prompts holds the model instructions for starting and continuing a
// story and parses the JSON the model answers with.
package prompts

import (
	"fmt"
	"strings"

	"github.com/meikuraledutech/storytree"
)

const StartSystem = `You are a creative story writer. Given a topic and a genre in the format
"<Tone> <Modifier> <Core> of <Theme> story" (example: "Bleak Cosmic Horror of Identity story"),
create a compelling starting point for an interactive story.

You must define 2-3 main characters with vivid descriptions.
Then write an opening storyline that introduces the setting and the initial situation.
Finally, suggest 2-4 short branching paths the reader can choose from.

You MUST respond with a single, valid JSON object and nothing else:
{
  "title": "a short evocative title",
  "characters": [{"name": "...", "description": "..."}],
  "storyline": "the opening scene",
  "branchingPaths": ["first choice", "second choice"]
}`

const ContinueSystem = `You are continuing an interactive branching story.
You receive the story so far, its genre and characters, and the action the reader chose.
Write what happens next (at most 200 words) in the same voice, then offer 2-4 short
branching paths. If the story reaches a natural ending, return an empty list of paths.

You MUST respond with a single, valid JSON object and nothing else:
{
  "newStoryPart": "what happens next",
  "newBranchingPaths": ["first choice", "second choice"]
}`

const jsonRetry = `The previous response you sent was not valid JSON. Analyze the following text,
which contains the invalid response, and correct it. The corrected response MUST be a single,
valid JSON object that conforms to the required structure. Do not include any explanatory text.

Invalid response:
%s
`

// StartUser is the user message for a new story.
func StartUser(topic, genre string) string {
	return fmt.Sprintf("Topic: %s\nGenre: %s", topic, genre)
}

// ContinueUser is the user message for continuing s along path with choice.
func ContinueUser(s *storytree.Story, path []storytree.Node, choice string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nGenre: %s\n", s.Title, s.Genre)
	if len(s.Characters) > 0 {
		b.WriteString("Characters:\n")
		for _, c := range s.Characters {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
		}
	}
	b.WriteString("\nStory so far:\n")
	b.WriteString(storytree.Transcript(path))
	fmt.Fprintf(&b, "\n\nChosen action: %s", choice)
	return b.String()
}

// JSONRetry asks the model to repair an answer that did not parse.
func JSONRetry(invalid string) string {
	return fmt.Sprintf(jsonRetry, invalid)
}
