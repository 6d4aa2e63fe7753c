package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stagehand/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script>...",
	Short: "Check lifecycle scripts for consistency",
	Long:  `Parses each script and reports unknown signals, undeclared containers and bad expectations.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.Validate(os.Stdout, args); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("All scripts are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
