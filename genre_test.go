package storytree_test

import (
	"strings"
	"testing"

	"github.com/meikuraledutech/storytree"
	"github.com/stretchr/testify/assert"
)

func TestGenre_String(t *testing.T) {
	g := storytree.Genre{Tone: "Bleak", Modifier: " Cosmic", Core: "Horror ", Theme: "Identity"}
	assert.Equal(t, "Bleak Cosmic Horror of Identity story", g.String())
}

func TestCatalog_Contains(t *testing.T) {
	assert.True(t, storytree.GenreCatalog.Contains(storytree.Genre{Tone: "Dark", Modifier: "Noir", Core: "Crime", Theme: "Redemption"}))
	assert.False(t, storytree.GenreCatalog.Contains(storytree.Genre{Tone: "Dark", Modifier: "Noir", Core: "Opera", Theme: "Redemption"}))
}

func TestStartRequest_Validate(t *testing.T) {
	assert.NoError(t, validRequest().Validate())

	long := validRequest()
	long.Topic = strings.Repeat("a", 201)
	assert.ErrorIs(t, long.Validate(), storytree.ErrInvalidInput)

	// Custom genre parts are accepted as long as they are not blank.
	custom := validRequest()
	custom.Core = "Opera"
	assert.NoError(t, custom.Validate())

	bad := storytree.StartRequest{Topic: "  tiny  "}
	err := bad.Validate()
	assert.ErrorIs(t, err, storytree.ErrInvalidInput)
	for _, part := range []string{"topic", "tone", "core", "modifier", "theme"} {
		assert.Contains(t, err.Error(), part)
	}
}
