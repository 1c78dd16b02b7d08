package storytree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Navigator answers questions about a story's tree. It never mutates a Story.
// The zero value is ready to use and assigns uuid v4 node ids.
type Navigator struct {
	// NewID returns a fresh node id. Defaults to uuid.NewString.
	NewID func() string
}

// Resolution is the outcome of ResolveChoice.
// Existing is false when the branch has not been generated yet.
type Resolution struct {
	Existing bool
	NodeID   string
}

// NeedsGeneration reports whether the branch still has to be generated.
func (r Resolution) NeedsGeneration() bool { return !r.Existing }

// Continuation is what the generator produced for one chosen action.
type Continuation struct {
	StoryPart      string   `json:"newStoryPart"`
	BranchingPaths []string `json:"newBranchingPaths"`
}

// PathToRoot returns the nodes from the root down to the current node.
// A parent id that does not resolve returns ErrNotFound; a parent chain that
// revisits a node returns ErrInvalidTree. Neither case loops.
func (Navigator) PathToRoot(s *Story) ([]Node, error) {
	var path []Node
	seen := make(map[string]bool, len(s.Nodes))
	id := s.CurrentNodeID
	for {
		n, ok := s.Nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: node %q in story %q", ErrNotFound, id, s.ID)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: parent chain of story %q revisits node %q", ErrInvalidTree, s.ID, id)
		}
		seen[id] = true
		path = append(path, n)
		if n.IsRoot() {
			break
		}
		id = n.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// ResolveChoice looks for the child of current reached through choice.
// More than one such child means the tree is corrupt and returns
// ErrDuplicateBranch rather than picking one.
func (Navigator) ResolveChoice(s *Story, current Node, choice string) (Resolution, error) {
	if _, ok := s.Nodes[current.ID]; !ok {
		return Resolution{}, fmt.Errorf("%w: node %q in story %q", ErrNotFound, current.ID, s.ID)
	}

	var found []string
	for id, n := range s.Nodes {
		if n.ParentID == current.ID && n.Choice == choice {
			found = append(found, id)
		}
	}

	switch len(found) {
	case 0:
		return Resolution{}, nil
	case 1:
		return Resolution{Existing: true, NodeID: found[0]}, nil
	default:
		sort.Strings(found)
		return Resolution{}, fmt.Errorf("%w: story %q, parent %q, choice %q, nodes %v",
			ErrDuplicateBranch, s.ID, current.ID, choice, found)
	}
}

// ApplyGenerationResult builds the child of current for choice from a
// generation result. The node is not persisted; pass it to
// Repository.AppendNode.
func (nav Navigator) ApplyGenerationResult(_ *Story, current Node, choice string, c Continuation) Node {
	return Node{
		ID:             nav.newID(),
		StoryPart:      c.StoryPart,
		ParentID:       current.ID,
		Choice:         choice,
		BranchingPaths: append([]string(nil), c.BranchingPaths...),
	}
}

// Children returns the direct children of nodeID, ordered by the position of
// their choice in the parent's branching paths, then by id.
func (Navigator) Children(s *Story, nodeID string) []Node {
	rank := make(map[string]int)
	if parent, ok := s.Nodes[nodeID]; ok {
		for i, p := range parent.BranchingPaths {
			if _, dup := rank[p]; !dup {
				rank[p] = i
			}
		}
	}

	var children []Node
	for _, n := range s.Nodes {
		if n.ParentID == nodeID && n.ParentID != "" {
			children = append(children, n)
		}
	}

	pos := func(n Node) int {
		if r, ok := rank[n.Choice]; ok {
			return r
		}
		return len(rank)
	}
	sort.Slice(children, func(i, j int) bool {
		pi, pj := pos(children[i]), pos(children[j])
		if pi != pj {
			return pi < pj
		}
		return children[i].ID < children[j].ID
	})
	return children
}

// Validate checks every structural invariant of s: one root, a choice on
// every other node, no dangling parents, no cycles, map keys matching node
// ids, at most one node per branch, and a current node that exists.
func (Navigator) Validate(s *Story) error {
	if s == nil {
		return fmt.Errorf("%w: nil story", ErrInvalidTree)
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("%w: story %q has no nodes", ErrInvalidTree, s.ID)
	}

	roots := 0
	type branch struct{ parent, choice string }
	branches := make(map[branch]string)
	for key, n := range s.Nodes {
		if key != n.ID {
			return fmt.Errorf("%w: node stored under %q has id %q", ErrInvalidTree, key, n.ID)
		}
		if n.IsRoot() {
			roots++
			continue
		}
		if strings.TrimSpace(n.Choice) == "" {
			return fmt.Errorf("%w: node %q has no choice", ErrInvalidTree, n.ID)
		}
		if _, ok := s.Nodes[n.ParentID]; !ok {
			return fmt.Errorf("%w: node %q references missing parent %q", ErrInvalidTree, n.ID, n.ParentID)
		}
		b := branch{n.ParentID, n.Choice}
		if other, ok := branches[b]; ok {
			return fmt.Errorf("%w: nodes %q and %q", ErrDuplicateBranch, other, n.ID)
		}
		branches[b] = n.ID
	}
	if roots != 1 {
		return fmt.Errorf("%w: story %q has %d roots", ErrInvalidTree, s.ID, roots)
	}

	if err := checkAcyclic(s.Nodes); err != nil {
		return err
	}

	if _, ok := s.Nodes[s.CurrentNodeID]; !ok {
		return fmt.Errorf("%w: current node %q is not in story %q", ErrInvalidTree, s.CurrentNodeID, s.ID)
	}
	return nil
}

// checkAcyclic walks every parent chain once, marking nodes that are known to
// reach the root.
func checkAcyclic(nodes map[string]Node) error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(nodes))
	for id := range nodes {
		if state[id] == visited {
			continue
		}
		var chain []string
		cur := id
		for cur != "" && state[cur] != visited {
			if state[cur] == visiting {
				return fmt.Errorf("%w: cycle through node %q", ErrInvalidTree, cur)
			}
			state[cur] = visiting
			chain = append(chain, cur)
			cur = nodes[cur].ParentID
		}
		for _, c := range chain {
			state[c] = visited
		}
	}
	return nil
}

func (nav Navigator) newID() string {
	if nav.NewID != nil {
		return nav.NewID()
	}
	return uuid.NewString()
}
