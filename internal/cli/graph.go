package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/stagehand/internal/presentation/graph"
	"github.com/aretw0/stagehand/pkg/lifecycle"
	"github.com/aretw0/stagehand/pkg/script"
)

// GraphOptions selects the diagram printed by Graph.
type GraphOptions struct {
	// Script, when set, is replayed and its final registry overlaid on the lifecycle.
	Script string
	// Sequence prints the replay's surface operations as a sequence diagram instead.
	Sequence bool
}

// Graph writes a Mermaid diagram to out.
func Graph(ctx context.Context, out io.Writer, opts GraphOptions) error {
	if opts.Script == "" {
		if opts.Sequence {
			return fmt.Errorf("--sequence needs a script to replay")
		}
		fmt.Fprint(out, graph.GenerateMermaid(lifecycle.Transitions(), nil))
		return nil
	}

	s, err := script.Load(opts.Script)
	if err != nil {
		return err
	}
	report, err := script.Run(ctx, s)
	if err != nil {
		return err
	}
	if len(report.Steps) == 0 {
		fmt.Fprint(out, graph.GenerateMermaid(lifecycle.Transitions(), nil))
		return nil
	}

	if opts.Sequence {
		fmt.Fprint(out, graph.GenerateSequence(report.Journal))
		return nil
	}

	last := report.Steps[len(report.Steps)-1].Snapshot
	fmt.Fprint(out, graph.GenerateMermaid(lifecycle.Transitions(), graph.OverlayFromSnapshot(last)))
	return nil
}
