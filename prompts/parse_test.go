package prompts_test

import (
	"strings"
	"testing"

	"github.com/meikuraledutech/storytree"
	"github.com/meikuraledutech/storytree/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpening(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		raw := "```json\n" + `{
  "title": "The Signal",
  "characters": [{"name": "Ada", "description": "a lone astronaut"}],
  "storyline": "A signal pulses from the dark side of the moon.",
  "branchingPaths": ["answer it", "ignore it"]
}` + "\n```"

		op, err := prompts.ParseOpening(raw)
		require.NoError(t, err)
		assert.Equal(t, "The Signal", op.Title)
		assert.Equal(t, []storytree.Character{{Name: "Ada", Description: "a lone astronaut"}}, op.Characters)
		assert.Equal(t, "A signal pulses from the dark side of the moon.", op.Narrative)
		assert.Equal(t, []string{"answer it", "ignore it"}, op.Choices)
	})

	t.Run("chatter around the object", func(t *testing.T) {
		raw := `Here you go: {"storyline": "It begins.", "branchingPaths": ["go"]} Enjoy!`
		op, err := prompts.ParseOpening(raw)
		require.NoError(t, err)
		assert.Equal(t, "It begins.", op.Narrative)
	})

	t.Run("missing storyline", func(t *testing.T) {
		_, err := prompts.ParseOpening(`{"branchingPaths": ["go"]}`)
		assert.ErrorIs(t, err, prompts.ErrMalformed)
	})

	t.Run("missing paths", func(t *testing.T) {
		_, err := prompts.ParseOpening(`{"storyline": "It begins."}`)
		assert.ErrorIs(t, err, prompts.ErrMalformed)
	})

	t.Run("blank paths only", func(t *testing.T) {
		_, err := prompts.ParseOpening(`{"storyline": "It begins.", "branchingPaths": ["  ", ""]}`)
		assert.ErrorIs(t, err, prompts.ErrMalformed)
	})

	t.Run("blank paths are dropped", func(t *testing.T) {
		op, err := prompts.ParseOpening(`{"storyline": "It begins.", "branchingPaths": [" go ", "", "stay"]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "stay"}, op.Choices)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := prompts.ParseOpening("once upon a time")
		assert.ErrorIs(t, err, prompts.ErrMalformed)
	})
}

func TestParseContinuation(t *testing.T) {
	c, err := prompts.ParseContinuation(`{"newStoryPart": "You find a cave.", "newBranchingPaths": ["enter", "leave"]}`)
	require.NoError(t, err)
	assert.Equal(t, "You find a cave.", c.StoryPart)
	assert.Equal(t, []string{"enter", "leave"}, c.BranchingPaths)

	end, err := prompts.ParseContinuation(`{"newStoryPart": "The end.", "newBranchingPaths": []}`)
	require.NoError(t, err)
	assert.Empty(t, end.BranchingPaths)

	_, err = prompts.ParseContinuation(`{"newBranchingPaths": ["enter"]}`)
	assert.ErrorIs(t, err, prompts.ErrMalformed)
}

func TestContinueUser(t *testing.T) {
	s := &storytree.Story{
		Title:      "Caves",
		Genre:      "Dark Epic Fantasy of Survival story",
		Characters: []storytree.Character{{Name: "Mira", Description: "a scout"}},
	}
	path := []storytree.Node{
		{ID: "r", StoryPart: "You stand at a crossroads."},
		{ID: "n1", ParentID: "r", Choice: "go north", StoryPart: "You find a cave."},
	}

	msg := prompts.ContinueUser(s, path, "enter")
	assert.Contains(t, msg, "Genre: Dark Epic Fantasy of Survival story")
	assert.Contains(t, msg, "- Mira: a scout")
	assert.Contains(t, msg, "You stand at a crossroads.\n\n> go north\nYou find a cave.")
	assert.True(t, strings.HasSuffix(msg, "Chosen action: enter"))
}
