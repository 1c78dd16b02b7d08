package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/meikuraledutech/storytree"
	"github.com/meikuraledutech/storytree/internal/logger"
)

// scripted plays back fixed content so the walkthrough runs without a model.
type scripted struct {
	calls int
}

func (g *scripted) StartStory(_ context.Context, topic, genre string) (storytree.Opening, error) {
	return storytree.Opening{
		Title:      "The Crossroads",
		Genre:      genre,
		Characters: []storytree.Character{{Name: "Mira", Description: "a scout far from home"}},
		Narrative:  "You stand at a crossroads. Wind carries the smell of rain.",
		Choices:    []string{"go north", "go south"},
	}, nil
}

func (g *scripted) ContinueStory(_ context.Context, _ *storytree.Story, choice string) (storytree.Continuation, error) {
	g.calls++
	switch choice {
	case "go north":
		return storytree.Continuation{StoryPart: "You find a cave.", BranchingPaths: []string{"enter", "leave"}}, nil
	default:
		return storytree.Continuation{StoryPart: "The river swallows the path. Your journey ends here."}, nil
	}
}

func main() {
	ctx := context.Background()

	zlog, err := logger.New(logger.Config{Level: "warn", Encoding: "console"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	gen := &scripted{}
	repo := storytree.NewRepository(storytree.NewMemoryKV(), "", zlog)
	session := storytree.NewSession(repo, gen, zlog)

	// ── Start ─────────────────────────────────────────────────────────
	v, err := session.Start(ctx, storytree.StartRequest{
		Topic: "a scout lost between two kingdoms",
		Genre: storytree.Genre{Tone: "Dark", Modifier: "Epic", Core: "Fantasy", Theme: "Survival"},
	})
	if err != nil {
		log.Fatalf("start: %v", err)
	}
	root := v.Current.ID
	fmt.Printf("started %q (%s)\n", v.Story.Title, v.Story.Genre)

	// ── Generate a branch ─────────────────────────────────────────────
	out, err := session.Choose(ctx, v.Story.ID, "go north")
	if err != nil {
		log.Fatalf("choose: %v", err)
	}
	fmt.Printf("go north: generated=%v, choices=%v\n", out.Generated, out.View.Choices)

	// ── Go back and replay ────────────────────────────────────────────
	if _, err := session.Revisit(ctx, v.Story.ID, root); err != nil {
		log.Fatalf("revisit: %v", err)
	}
	out, err = session.Choose(ctx, v.Story.ID, "go north")
	if err != nil {
		log.Fatalf("choose: %v", err)
	}
	fmt.Printf("go north again: generated=%v, generator calls=%d\n", out.Generated, gen.calls)

	// ── Explore the other branch to an ending ─────────────────────────
	if _, err := session.Revisit(ctx, v.Story.ID, root); err != nil {
		log.Fatalf("revisit: %v", err)
	}
	out, err = session.Choose(ctx, v.Story.ID, "go south")
	if err != nil {
		log.Fatalf("choose: %v", err)
	}

	fmt.Println("\ntranscript:")
	fmt.Println(storytree.Transcript(out.View.Path))
	if len(out.View.Choices) == 0 {
		fmt.Println("\nThe path ends here... for now.")
	}

	m, err := session.Map(ctx, v.Story.ID)
	if err != nil {
		log.Fatalf("map: %v", err)
	}
	fmt.Println("\nmap:")
	printJSON(m)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
