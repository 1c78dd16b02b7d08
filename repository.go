package storytree

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Repository owns the story collection. Every mutation loads the whole
// collection from the KV, changes it, and saves it back under one key.
//
// Mutations from one Repository are serialised. Two processes writing the
// same key are last-writer-wins at collection granularity.
type Repository struct {
	kv     KV
	key    string
	nav    Navigator
	logger *zap.Logger
	mu     sync.Mutex
}

// NewRepository returns a Repository persisting under key in kv.
// An empty key means DefaultKey; a nil logger disables logging.
func NewRepository(kv KV, key string, logger *zap.Logger) *Repository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		kv:     kv,
		key:    key,
		logger: logger.Named("repository"),
	}
}

// Create appends a new story. The story must pass Navigator.Validate and its
// id must not be in use.
func (r *Repository) Create(ctx context.Context, s *Story) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: story id is required", ErrInvalidTree)
	}
	if err := r.nav.Validate(s); err != nil {
		return err
	}

	return r.update(ctx, func(stories []*Story) ([]*Story, error) {
		if find(stories, s.ID) != nil {
			return nil, fmt.Errorf("%w: story %q", ErrDuplicateID, s.ID)
		}
		r.logger.Debug("Creating story",
			zap.String("story_id", s.ID),
			zap.Int("nodes", len(s.Nodes)),
		)
		return append(stories, s.Clone()), nil
	})
}

// Get returns the story with id. The returned value is a copy; changing it
// does not change what is persisted.
func (r *Repository) Get(ctx context.Context, id string) (*Story, error) {
	stories, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	s := find(stories, id)
	if s == nil {
		return nil, fmt.Errorf("%w: story %q", ErrNotFound, id)
	}
	return s, nil
}

// List returns a summary of every story, newest first.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	stories, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(stories))
	for _, s := range stories {
		out = append(out, s.summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// AppendNode inserts node as a child of an existing node and makes it current.
// Nothing changes if any check fails.
func (r *Repository) AppendNode(ctx context.Context, storyID string, node Node) error {
	if strings.TrimSpace(node.ID) == "" {
		return fmt.Errorf("%w: node id is required", ErrInvalidTree)
	}
	if node.IsRoot() {
		return fmt.Errorf("%w: node %q has no parent, a story has exactly one root", ErrInvalidTree, node.ID)
	}
	if strings.TrimSpace(node.Choice) == "" {
		return fmt.Errorf("%w: node %q has no choice", ErrInvalidTree, node.ID)
	}

	return r.update(ctx, func(stories []*Story) ([]*Story, error) {
		s := find(stories, storyID)
		if s == nil {
			return nil, fmt.Errorf("%w: story %q", ErrNotFound, storyID)
		}
		if _, ok := s.Nodes[node.ID]; ok {
			return nil, fmt.Errorf("%w: node %q in story %q", ErrDuplicateID, node.ID, storyID)
		}
		parent, ok := s.Nodes[node.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: parent node %q in story %q", ErrNotFound, node.ParentID, storyID)
		}
		res, err := r.nav.ResolveChoice(s, parent, node.Choice)
		if err != nil {
			return nil, err
		}
		if res.Existing {
			return nil, fmt.Errorf("%w: story %q already has node %q for choice %q of %q",
				ErrDuplicateBranch, storyID, res.NodeID, node.Choice, parent.ID)
		}

		node.BranchingPaths = append([]string(nil), node.BranchingPaths...)
		s.Nodes[node.ID] = node
		s.CurrentNodeID = node.ID
		r.logger.Debug("Appended node",
			zap.String("story_id", storyID),
			zap.String("node_id", node.ID),
			zap.String("parent_id", node.ParentID),
		)
		return stories, nil
	})
}

// SetCurrentNode moves the current-node pointer of a story. Nothing else
// changes.
func (r *Repository) SetCurrentNode(ctx context.Context, storyID, nodeID string) error {
	return r.update(ctx, func(stories []*Story) ([]*Story, error) {
		s := find(stories, storyID)
		if s == nil {
			return nil, fmt.Errorf("%w: story %q", ErrNotFound, storyID)
		}
		if _, ok := s.Nodes[nodeID]; !ok {
			return nil, fmt.Errorf("%w: node %q in story %q", ErrNotFound, nodeID, storyID)
		}
		s.CurrentNodeID = nodeID
		return stories, nil
	})
}

// update runs one read-modify-write cycle. fn's error aborts before saving.
func (r *Repository) update(ctx context.Context, fn func([]*Story) ([]*Story, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load(ctx)
	if err != nil {
		return err
	}
	stories, err = fn(stories)
	if err != nil {
		return err
	}
	return r.save(ctx, stories)
}

func (r *Repository) load(ctx context.Context) ([]*Story, error) {
	raw, err := r.kv.Load(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("storytree: load %q: %w", r.key, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var stories []*Story
	if err := json.Unmarshal(raw, &stories); err != nil {
		return nil, fmt.Errorf("storytree: decode %q: %w", r.key, err)
	}
	for _, s := range stories {
		if s.Nodes == nil {
			s.Nodes = map[string]Node{}
		}
	}
	return stories, nil
}

func (r *Repository) save(ctx context.Context, stories []*Story) error {
	if stories == nil {
		stories = []*Story{}
	}
	raw, err := json.Marshal(stories)
	if err != nil {
		return fmt.Errorf("storytree: encode %q: %w", r.key, err)
	}
	if err := r.kv.Save(ctx, r.key, raw); err != nil {
		return fmt.Errorf("storytree: save %q: %w", r.key, err)
	}
	return nil
}

func find(stories []*Story, id string) *Story {
	for _, s := range stories {
		if s.ID == id {
			return s
		}
	}
	return nil
}
