package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pixelgate/pixelgate/internal/runner"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the visual regression suite",
	Long: `Run the full visual regression suite.

The test command will:
1. Discover test cases from the configured sources
2. Capture a screenshot of every (case, variant, browser) instance
3. Compare each capture against its committed baseline
4. Report per-case results and an aggregate summary

The command exits non-zero when any case fails, so it can gate CI.

Examples:
  pixelgate test
  pixelgate test --config suites/marketing.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSuite(cmd.Context(), runner.ModeTest)
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
