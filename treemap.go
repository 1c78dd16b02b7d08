package storytree

import "fmt"

// TreeMap is the narrative map of a story: every node and every parent link,
// laid out breadth-first from the root.
type TreeMap struct {
	StoryID string    `json:"storyId"`
	Nodes   []MapNode `json:"nodes"`
	Edges   []MapEdge `json:"edges"`
}

// MapNode is one node of the map.
type MapNode struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Depth    int    `json:"depth"`
	OnPath   bool   `json:"onPath"`
	Current  bool   `json:"current"`
	Terminal bool   `json:"terminal"`
}

// MapEdge links a parent to the child reached through Choice.
type MapEdge struct {
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
	Choice     string `json:"choice"`
}

// Map lays out the tree of s. The story must pass Validate.
func (nav Navigator) Map(s *Story) (TreeMap, error) {
	if err := nav.Validate(s); err != nil {
		return TreeMap{}, err
	}
	path, err := nav.PathToRoot(s)
	if err != nil {
		return TreeMap{}, err
	}
	onPath := make(map[string]bool, len(path))
	for _, n := range path {
		onPath[n.ID] = true
	}

	m := TreeMap{StoryID: s.ID, Nodes: []MapNode{}, Edges: []MapEdge{}}
	type item struct {
		node  Node
		depth int
	}
	queue := []item{{node: path[0], depth: 0}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		m.Nodes = append(m.Nodes, MapNode{
			ID:       it.node.ID,
			Label:    label(it.node),
			Depth:    it.depth,
			OnPath:   onPath[it.node.ID],
			Current:  it.node.ID == s.CurrentNodeID,
			Terminal: len(it.node.BranchingPaths) == 0,
		})
		for _, child := range nav.Children(s, it.node.ID) {
			m.Edges = append(m.Edges, MapEdge{
				FromNodeID: it.node.ID,
				ToNodeID:   child.ID,
				Choice:     child.Choice,
			})
			queue = append(queue, item{node: child, depth: it.depth + 1})
		}
	}

	if len(m.Nodes) != len(s.Nodes) {
		return TreeMap{}, fmt.Errorf("%w: %d of %d nodes reachable from the root",
			ErrInvalidTree, len(m.Nodes), len(s.Nodes))
	}
	return m, nil
}

const labelRunes = 40

func label(n Node) string {
	text := n.Choice
	if n.IsRoot() {
		text = "Start"
	}
	r := []rune(text)
	if len(r) > labelRunes {
		return string(r[:labelRunes-1]) + "…"
	}
	return text
}
