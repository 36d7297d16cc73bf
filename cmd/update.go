package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pixelgate/pixelgate/internal/runner"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Capture fresh baselines",
	Long: `Capture fresh baseline screenshots for every test case.

Captures overwrite the baseline set directly; no comparison runs.
Review and commit the new baselines after verifying them.

Examples:
  pixelgate update
  pixelgate update --config suites/marketing.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSuite(cmd.Context(), runner.ModeUpdate)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
