package main

import (
	"context"
	"os"

	"github.com/aretw0/stagehand/internal/cli"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Replay a lifecycle script against virtual engines",
	Long: `Replays the host signals of a YAML script against a fresh coordinator and checks
each step's expectations. Exits non-zero when an expectation fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		metrics, _ := cmd.Flags().GetBool("metrics")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		_, err = cli.Replay(ctx, os.Stdout, args[0], cli.ReplayOptions{
			Format:  format,
			Debug:   cfg.Log.Level == "debug",
			Metrics: metrics,
		}, logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("format", "f", "text", "Report format: text, markdown or json")
	replayCmd.Flags().Bool("metrics", false, "Print the signal and attach counters after the report")
}
