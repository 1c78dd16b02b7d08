package storytree

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// View is everything a reader needs to render a story at its current node.
type View struct {
	Story   *Story   `json:"story"`
	Path    []Node   `json:"path"`
	Current Node     `json:"current"`
	Choices []string `json:"choices"`
}

// Outcome is the result of Choose. Generated is false when the choice led to
// a node that already existed.
type Outcome struct {
	View      View `json:"view"`
	Generated bool `json:"generated"`
}

// Session drives the interactive loop: start a story, take a choice, revisit
// a node. At most one choice per story is resolved at a time; a concurrent
// call for the same story gets ErrBusy.
type Session struct {
	repo   *Repository
	gen    Generator
	nav    Navigator
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNavigator replaces the default Navigator, e.g. to control node ids.
func WithNavigator(nav Navigator) SessionOption {
	return func(s *Session) { s.nav = nav }
}

// WithClock replaces time.Now for story creation timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession returns a Session over repo and gen.
func NewSession(repo *Repository, gen Generator, logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		repo:     repo,
		gen:      gen,
		logger:   logger.Named("session"),
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates req, asks the generator for an opening and persists the new
// story with its root node as current.
func (s *Session) Start(ctx context.Context, req StartRequest) (View, error) {
	if err := req.Validate(); err != nil {
		return View{}, err
	}
	topic := strings.TrimSpace(req.Topic)
	genre := req.Genre.String()

	opening, err := s.gen.StartStory(ctx, topic, genre)
	if err != nil {
		err = generationError(err)
		s.logger.Warn("Story start generation failed", zap.String("genre", genre), zap.Error(err))
		return View{}, err
	}
	if strings.TrimSpace(opening.Narrative) == "" {
		err := fmt.Errorf("%w: empty opening", ErrGenerationFailed)
		s.logger.Warn("Story start generation failed", zap.String("genre", genre), zap.Error(err))
		return View{}, err
	}

	choices := cleanChoices(opening.Choices)
	if len(choices) == 0 {
		err := fmt.Errorf("%w: opening offers no choices", ErrGenerationFailed)
		s.logger.Warn("Story start generation failed", zap.String("genre", genre), zap.Error(err))
		return View{}, err
	}

	root := Node{
		ID:             s.nav.newID(),
		StoryPart:      opening.Narrative,
		BranchingPaths: choices,
	}
	story := &Story{
		ID:            uuid.NewString(),
		Title:         titleFor(opening.Title, topic),
		Genre:         genre,
		Characters:    opening.Characters,
		Nodes:         map[string]Node{root.ID: root},
		CurrentNodeID: root.ID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, story); err != nil {
		s.report("Failed to persist new story", err, zap.String("story_id", story.ID))
		return View{}, err
	}

	s.logger.Info("Story started",
		zap.String("story_id", story.ID),
		zap.String("genre", genre),
		zap.Int("choices", len(root.BranchingPaths)),
	)
	return s.view(story)
}

// View returns the story with its path and the choices at the current node.
func (s *Session) View(ctx context.Context, storyID string) (View, error) {
	story, err := s.repo.Get(ctx, storyID)
	if err != nil {
		return View{}, err
	}
	return s.view(story)
}

// Library lists every story, newest first.
func (s *Session) Library(ctx context.Context) ([]Summary, error) {
	return s.repo.List(ctx)
}

// Map returns the narrative map of a story.
func (s *Session) Map(ctx context.Context, storyID string) (TreeMap, error) {
	story, err := s.repo.Get(ctx, storyID)
	if err != nil {
		return TreeMap{}, err
	}
	m, err := s.nav.Map(story)
	if err != nil {
		s.report("Failed to map story", err, zap.String("story_id", storyID))
		return TreeMap{}, err
	}
	return m, nil
}

// Choose takes choice at the current node. An already explored branch is
// replayed; otherwise the generator writes it and the new node is appended.
// A failed generation leaves the story unchanged.
func (s *Session) Choose(ctx context.Context, storyID, choice string) (Outcome, error) {
	release, err := s.acquire(storyID)
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	story, err := s.repo.Get(ctx, storyID)
	if err != nil {
		return Outcome{}, err
	}
	current, ok := story.Current()
	if !ok {
		err := fmt.Errorf("%w: current node %q in story %q", ErrNotFound, story.CurrentNodeID, storyID)
		s.report("Current node is missing", err, zap.String("story_id", storyID))
		return Outcome{}, err
	}
	if !slices.Contains(current.BranchingPaths, choice) {
		return Outcome{}, fmt.Errorf("%w: %q at node %q", ErrUnknownChoice, choice, current.ID)
	}

	res, err := s.nav.ResolveChoice(story, current, choice)
	if err != nil {
		s.report("Failed to resolve choice", err, zap.String("story_id", storyID), zap.String("node_id", current.ID))
		return Outcome{}, err
	}

	if res.Existing {
		if err := s.repo.SetCurrentNode(ctx, storyID, res.NodeID); err != nil {
			s.report("Failed to move to existing branch", err, zap.String("story_id", storyID))
			return Outcome{}, err
		}
		s.logger.Debug("Replayed existing branch",
			zap.String("story_id", storyID),
			zap.String("node_id", res.NodeID),
		)
		v, err := s.View(ctx, storyID)
		return Outcome{View: v}, err
	}

	cont, err := s.gen.ContinueStory(ctx, story.Clone(), choice)
	if err == nil && strings.TrimSpace(cont.StoryPart) == "" {
		err = fmt.Errorf("%w: empty continuation", ErrGenerationFailed)
	}
	if err != nil {
		err = generationError(err)
		s.logger.Warn("Continuation generation failed",
			zap.String("story_id", storyID),
			zap.String("node_id", current.ID),
			zap.Error(err),
		)
		return Outcome{}, err
	}
	cont.BranchingPaths = cleanChoices(cont.BranchingPaths)

	node := s.nav.ApplyGenerationResult(story, current, choice, cont)
	if err := s.repo.AppendNode(ctx, storyID, node); err != nil {
		s.report("Failed to append generated node", err, zap.String("story_id", storyID), zap.String("node_id", node.ID))
		return Outcome{}, err
	}
	s.logger.Info("Generated new branch",
		zap.String("story_id", storyID),
		zap.String("parent_id", current.ID),
		zap.String("node_id", node.ID),
	)
	v, err := s.View(ctx, storyID)
	return Outcome{View: v, Generated: true}, err
}

// Revisit makes nodeID the current node of the story.
func (s *Session) Revisit(ctx context.Context, storyID, nodeID string) (View, error) {
	release, err := s.acquire(storyID)
	if err != nil {
		return View{}, err
	}
	defer release()

	if err := s.repo.SetCurrentNode(ctx, storyID, nodeID); err != nil {
		return View{}, err
	}
	return s.View(ctx, storyID)
}

func (s *Session) view(story *Story) (View, error) {
	path, err := s.nav.PathToRoot(story)
	if err != nil {
		s.report("Failed to rebuild story path", err, zap.String("story_id", story.ID))
		return View{}, err
	}
	current := path[len(path)-1]
	return View{
		Story:   story,
		Path:    path,
		Current: current,
		Choices: append([]string{}, current.BranchingPaths...),
	}, nil
}

func (s *Session) acquire(storyID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[storyID]; busy {
		return nil, fmt.Errorf("%w: story %q", ErrBusy, storyID)
	}
	s.inFlight[storyID] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, storyID)
		s.mu.Unlock()
	}, nil
}

// report logs errors that mean persisted data is corrupt at error level and
// everything else at warn level.
func (s *Session) report(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, ErrInvalidTree),
		errors.Is(err, ErrDuplicateID),
		errors.Is(err, ErrDuplicateBranch),
		errors.Is(err, ErrNotFound):
		s.logger.Error(msg, fields...)
	default:
		s.logger.Warn(msg, fields...)
	}
}

func generationError(err error) error {
	if errors.Is(err, ErrGenerationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

// cleanChoices trims labels and drops empty and repeated ones, keeping order.
func cleanChoices(choices []string) []string {
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

const maxTitleRunes = 60

func titleFor(title, topic string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	r := []rune(topic)
	if len(r) > maxTitleRunes {
		return strings.TrimSpace(string(r[:maxTitleRunes])) + "…"
	}
	return topic
}
