package storytree_test

import (
	"fmt"
	"time"

	"github.com/meikuraledutech/storytree"
)

// crossroads returns a story whose root R offers "go north" and "go south".
func crossroads() *storytree.Story {
	return &storytree.Story{
		ID:    "s1",
		Title: "Crossroads",
		Genre: "Dark Epic Fantasy of Survival story",
		Nodes: map[string]storytree.Node{
			"R": {ID: "R", StoryPart: "You stand at a crossroads.", BranchingPaths: []string{"go north", "go south"}},
		},
		CurrentNodeID: "R",
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// sequence returns a node id source yielding prefix1, prefix2, ...
func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
