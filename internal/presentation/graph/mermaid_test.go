package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/stagehand/internal/presentation/graph"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/lifecycle"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		overlay     *graph.GraphOverlay
		contains    []string
		notContains []string
	}{
		{
			name: "Lifecycle Edges",
			contains: []string{
				"stateDiagram-v2",
				"[*] --> created: create",
				"created --> started: start",
				"resumed --> paused: pause",
				"paused --> resumed: resume",
				"stopped --> destroyed: destroy",
				"destroyed --> [*]",
			},
			notContains: []string{"classDef"},
		},
		{
			name: "Overlay",
			overlay: graph.OverlayFromSnapshot(domain.Snapshot{
				Top: "b",
				Containers: []domain.ContainerInfo{
					{UniqueID: "a", Stage: domain.StagePaused},
					{UniqueID: "b", Stage: domain.StageResumed, Top: true},
					{UniqueID: "c", Stage: domain.StagePaused},
				},
			}),
			contains: []string{
				"note right of paused: a, c",
				"note right of resumed: b",
				"class paused occupied",
				"class resumed current",
			},
			notContains: []string{"class resumed occupied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(lifecycle.Transitions(), tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q\n%s", want, got)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestGenerateSequence(t *testing.T) {
	journal := virtual.NewJournal()
	engine := virtual.NewEngine("main-engine", journal)
	surface := virtual.NewSurface("home", journal)
	surface.AttachToEngine(engine)
	surface.DetachFromEngine()
	_ = engine.SetDisplayingUI(false)

	got := graph.GenerateSequence(journal.Entries())
	for _, want := range []string{
		"sequenceDiagram",
		"participant home as home",
		"participant main_engine as main-engine",
		"home->>main_engine: attach",
		"home->>main_engine: detach",
		"Note over main_engine: ui_hidden",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q\n%s", want, got)
		}
	}
}
