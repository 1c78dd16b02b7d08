package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/storytree/internal/kvtest"
	"github.com/meikuraledutech/storytree/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "storytree.db"))
	require.NoError(t, err)
	defer s.Close()

	kvtest.Run(t, s, "sqlite:")
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storytree.db")

	s, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "stories", []byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Load(ctx, "stories")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(v))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite: ")
}
