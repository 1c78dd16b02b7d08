package storytree

import "time"

// Story is one narrative session: a single-rooted tree of nodes plus a pointer
// to the node the reader is currently viewing.
type Story struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Genre         string          `json:"genre"`
	Characters    []Character     `json:"characters,omitempty"`
	Nodes         map[string]Node `json:"nodes"`
	CurrentNodeID string          `json:"currentNodeId"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Node is one generated narrative beat.
// ParentID and Choice are empty for the root only.
type Node struct {
	ID             string   `json:"id"`
	StoryPart      string   `json:"storyPart"`
	ParentID       string   `json:"parentId,omitempty"`
	Choice         string   `json:"choice,omitempty"`
	BranchingPaths []string `json:"branchingPaths"`
}

// Character is a main character introduced when the story starts.
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Summary is the library view of a story.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre"`
	NodeCount int       `json:"nodeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsRoot reports whether n has no parent.
func (n Node) IsRoot() bool { return n.ParentID == "" }

// Current returns the node CurrentNodeID points at.
func (s *Story) Current() (Node, bool) {
	n, ok := s.Nodes[s.CurrentNodeID]
	return n, ok
}

// Clone returns a deep copy of s.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	c := *s
	c.Characters = append([]Character(nil), s.Characters...)
	c.Nodes = make(map[string]Node, len(s.Nodes))
	for id, n := range s.Nodes {
		n.BranchingPaths = append([]string(nil), n.BranchingPaths...)
		c.Nodes[id] = n
	}
	return &c
}

func (s *Story) summary() Summary {
	return Summary{
		ID:        s.ID,
		Title:     s.Title,
		Genre:     s.Genre,
		NodeCount: len(s.Nodes),
		CreatedAt: s.CreatedAt,
	}
}
