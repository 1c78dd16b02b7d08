package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meikuraledutech/storytree"
	"github.com/meikuraledutech/storytree/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*mocks.MockGenerator, func(method, path, body string) (int, []byte)) {
	t.Helper()
	gen := mocks.NewMockGenerator(t)
	repo := storytree.NewRepository(storytree.NewMemoryKV(), "", nil)
	session := storytree.NewSession(repo, gen, nil)
	app := newApp(session, zap.NewNop(), 0)

	do := func(method, path, body string) (int, []byte) {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, r)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, raw
	}
	return gen, do
}

const startBody = `{"topic": "a lighthouse keeper hears a voice", "tone": "Dark", "modifier": "Cosmic", "core": "Horror", "theme": "Identity"}`

func startStory(t *testing.T, gen *mocks.MockGenerator, do func(string, string, string) (int, []byte)) storytree.View {
	t.Helper()
	gen.On("StartStory", mock.Anything, "a lighthouse keeper hears a voice", "Dark Cosmic Horror of Identity story").
		Return(storytree.Opening{Title: "The Keeper", Narrative: "The lamp flickers.", Choices: []string{"go north", "go south"}}, nil).Once()

	status, raw := do(http.MethodPost, "/stories", startBody)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var v storytree.View
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndGenres(t *testing.T) {
	_, do := newTestApp(t)

	status, raw := do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	status, raw = do(http.MethodGet, "/genres", "")
	assert.Equal(t, http.StatusOK, status)
	var cat storytree.Catalog
	require.NoError(t, json.Unmarshal(raw, &cat))
	assert.Equal(t, storytree.GenreCatalog, cat)
}

func TestMetrics(t *testing.T) {
	_, do := newTestApp(t)
	status, raw := do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "go_goroutines")
}

func TestStoryFlow(t *testing.T) {
	gen, do := newTestApp(t)
	v := startStory(t, gen, do)
	root := v.Current.ID
	base := "/stories/" + v.Story.ID

	status, raw := do(http.MethodGet, "/stories", "")
	assert.Equal(t, http.StatusOK, status)
	var list []storytree.Summary
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "The Keeper", list[0].Title)

	gen.On("ContinueStory", mock.Anything, mock.Anything, "go north").
		Return(storytree.Continuation{StoryPart: "You find a cave.", BranchingPaths: []string{"enter", "leave"}}, nil).Once()

	status, raw = do(http.MethodPost, base+"/choices", `{"choice": "go north"}`)
	require.Equal(t, http.StatusOK, status, string(raw))
	var out storytree.Outcome
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Generated)
	assert.Equal(t, []string{"enter", "leave"}, out.View.Choices)

	status, _ = do(http.MethodPut, base+"/current", `{"node_id": "`+root+`"}`)
	assert.Equal(t, http.StatusOK, status)

	status, raw = do(http.MethodPost, base+"/choices", `{"choice": "go north"}`)
	require.Equal(t, http.StatusOK, status, string(raw))
	out = storytree.Outcome{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.False(t, out.Generated)

	status, raw = do(http.MethodGet, base+"/map", "")
	assert.Equal(t, http.StatusOK, status)
	var m storytree.TreeMap
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Len(t, m.Nodes, 2)
	assert.Len(t, m.Edges, 1)

	status, raw = do(http.MethodGet, base, "")
	assert.Equal(t, http.StatusOK, status)
	var view storytree.View
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.Len(t, view.Path, 2)
}

func TestErrors(t *testing.T) {
	gen, do := newTestApp(t)

	status, raw := do(http.MethodGet, "/stories/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(raw), `"error"`)

	status, _ = do(http.MethodPost, "/stories", `{"topic": "short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(http.MethodPost, "/stories", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	v := startStory(t, gen, do)
	base := "/stories/" + v.Story.ID

	status, _ = do(http.MethodPost, base+"/choices", `{"choice": "fly"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(http.MethodPost, base+"/choices", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(http.MethodPut, base+"/current", `{"node_id": "nope"}`)
	assert.Equal(t, http.StatusNotFound, status)

	gen.On("ContinueStory", mock.Anything, mock.Anything, "go south").
		Return(storytree.Continuation{}, errors.New("upstream down")).Once()
	status, _ = do(http.MethodPost, base+"/choices", `{"choice": "go south"}`)
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(storytree.ErrBusy))
	assert.Equal(t, http.StatusInternalServerError, statusFor(storytree.ErrInvalidTree))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
