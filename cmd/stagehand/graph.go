package main

import (
	"context"
	"os"

	"github.com/aretw0/stagehand/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [script]",
	Short: "Export the lifecycle visualization",
	Long: `Outputs a Mermaid state diagram of the container lifecycle. Given a script, the
registry after its last step is overlaid; with --sequence the script's surface
operations are printed as a sequence diagram instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.GraphOptions{}
		opts.Sequence, _ = cmd.Flags().GetBool("sequence")
		if len(args) > 0 {
			opts.Script = args[0]
		}
		return cli.Graph(context.Background(), os.Stdout, opts)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("sequence", false, "Print a sequence diagram of the script's attach and detach operations")
}
