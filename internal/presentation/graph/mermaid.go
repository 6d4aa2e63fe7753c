package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/lifecycle"
)

// GraphOverlay contains live registry data to visualize on the lifecycle graph.
type GraphOverlay struct {
	// Occupants lists the containers currently in each stage.
	Occupants map[domain.LifecycleStage][]string
	// Current is the stage of the top container.
	Current    domain.LifecycleStage
	HasCurrent bool
}

// OverlayFromSnapshot groups the snapshot's containers by stage.
func OverlayFromSnapshot(snap domain.Snapshot) *GraphOverlay {
	o := &GraphOverlay{Occupants: make(map[domain.LifecycleStage][]string)}
	for _, c := range snap.Containers {
		o.Occupants[c.Stage] = append(o.Occupants[c.Stage], c.UniqueID)
		if c.Top {
			o.Current = c.Stage
			o.HasCurrent = true
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid state diagram of the container lifecycle.
// Edges are labelled with the host signal that causes them. An overlay adds a
// note per occupied stage and highlights the stage of the top container.
func GenerateMermaid(transitions [][2]domain.LifecycleStage, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	signalFor := make(map[domain.LifecycleStage]domain.Signal)
	for _, s := range domain.Signals() {
		if stage, ok := lifecycle.StageFor(s); ok {
			signalFor[stage] = s
		}
	}

	sb.WriteString(fmt.Sprintf("    [*] --> %s: %s\n", domain.StageCreated, domain.SignalCreate))
	for _, t := range transitions {
		sb.WriteString(fmt.Sprintf("    %s --> %s: %s\n", t[0], t[1], signalFor[t[1]]))
	}
	sb.WriteString(fmt.Sprintf("    %s --> [*]\n", domain.StageDestroyed))

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	sb.WriteString("    classDef occupied fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	stages := make([]domain.LifecycleStage, 0, len(overlay.Occupants))
	for stage := range overlay.Occupants {
		stages = append(stages, stage)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	for _, stage := range stages {
		ids := overlay.Occupants[stage]
		if len(ids) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("    note right of %s: %s\n", stage, strings.Join(ids, ", ")))
		if !overlay.HasCurrent || stage != overlay.Current {
			sb.WriteString(fmt.Sprintf("    class %s occupied\n", stage))
		}
	}
	if overlay.HasCurrent {
		sb.WriteString(fmt.Sprintf("    class %s current\n", overlay.Current))
	}
	return sb.String()
}

// GenerateSequence renders journal entries as a Mermaid sequence diagram with one
// participant per container and one per engine.
func GenerateSequence(entries []virtual.Entry) string {
	var sb strings.Builder
	sb.WriteString("sequenceDiagram\n")

	seen := make(map[string]bool)
	declare := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		sb.WriteString(fmt.Sprintf("    participant %s as %s\n", sanitizeMermaidID(name), name))
	}
	for _, e := range entries {
		declare(e.Container)
		declare(e.Engine)
	}

	for _, e := range entries {
		switch {
		case e.Container != "" && e.Engine != "":
			sb.WriteString(fmt.Sprintf("    %s->>%s: %s\n", sanitizeMermaidID(e.Container), sanitizeMermaidID(e.Engine), e.Op))
		case e.Engine != "":
			sb.WriteString(fmt.Sprintf("    Note over %s: %s\n", sanitizeMermaidID(e.Engine), e.Op))
		case e.Container != "":
			sb.WriteString(fmt.Sprintf("    Note over %s: %s\n", sanitizeMermaidID(e.Container), e.Op))
		}
	}
	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
