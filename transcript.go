package storytree

import "strings"

// Transcript renders a root-to-current path as the story so far: each choice
// on its own "> " line followed by the part it led to.
func Transcript(path []Node) string {
	var b strings.Builder
	for i, n := range path {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if n.Choice != "" {
			b.WriteString("> ")
			b.WriteString(n.Choice)
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(n.StoryPart))
	}
	return b.String()
}
