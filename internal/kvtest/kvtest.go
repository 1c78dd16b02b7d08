// Package kvtest is a conformance suite every storytree.KV backend runs.
package kvtest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/meikuraledutech/storytree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run checks the Load/Save contract of kv and drives a Repository over it.
// Keys are prefixed with prefix so suites sharing a backend do not collide.
func Run(t *testing.T, kv storytree.KV, prefix string) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key", func(t *testing.T) {
		v, err := kv.Load(ctx, prefix+"missing")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("save then load", func(t *testing.T) {
		key := prefix + "roundtrip"
		require.NoError(t, kv.Save(ctx, key, []byte(`[{"id":"a"}]`)))
		v, err := kv.Load(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"a"}]`, string(v))

		require.NoError(t, kv.Save(ctx, key, []byte(`[]`)))
		v, err = kv.Load(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(v))
	})

	t.Run("escaped NUL survives", func(t *testing.T) {
		key := prefix + "nul"
		require.NoError(t, kv.Save(ctx, key, []byte(`["a\u0000b"]`)))
		v, err := kv.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `["a\u0000b"]`, string(v))
	})

	t.Run("repository", func(t *testing.T) {
		repo := storytree.NewRepository(kv, prefix+"stories", nil)
		s := &storytree.Story{
			ID:    "story-1",
			Title: "Caves",
			Genre: "Dark Epic Fantasy of Survival story",
			Nodes: map[string]storytree.Node{
				"r": {ID: "r", StoryPart: "You stand at a crossroads.", BranchingPaths: []string{"go north", "go south"}},
			},
			CurrentNodeID: "r",
		}
		require.NoError(t, repo.Create(ctx, s))
		require.NoError(t, repo.AppendNode(ctx, "story-1", storytree.Node{
			ID: "n1", ParentID: "r", Choice: "go north", StoryPart: "You find a cave.", BranchingPaths: []string{"enter", "leave"},
		}))
		require.NoError(t, repo.SetCurrentNode(ctx, "story-1", "r"))

		// A second Repository over the same key sees the persisted state.
		again := storytree.NewRepository(kv, prefix+"stories", nil)
		got, err := again.Get(ctx, "story-1")
		require.NoError(t, err)
		assert.Equal(t, "r", got.CurrentNodeID)
		assert.Len(t, got.Nodes, 2)
		assert.Equal(t, "go north", got.Nodes["n1"].Choice)

		raw, err := kv.Load(ctx, prefix+"stories")
		require.NoError(t, err)
		var arr []json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &arr), "collection is stored as a JSON array")
		assert.Len(t, arr, 1)
	})
}
