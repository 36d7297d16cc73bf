package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pixelgate/pixelgate/internal/compare"
	"github.com/pixelgate/pixelgate/internal/metrics"
	"github.com/pixelgate/pixelgate/internal/runner"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare existing artifacts without capturing",
	Long: `Compare the current artifact set against the baselines without
driving any browser. Useful for re-running comparison with a different
threshold, or for inspecting artifacts captured on another machine.

Examples:
  pixelgate compare
  pixelgate compare --config suites/marketing.yaml --verbose`,
	RunE: func(_ *cobra.Command, _ []string) error {
		components, err := buildComponents(Logger)
		if err != nil {
			return err
		}

		diffColor, err := components.cfg.ParseDiffColor()
		if err != nil {
			return err
		}

		start := time.Now()

		components.formatter.PrintPhase("Comparing against baselines")

		results, err := compare.Run(Logger, components.store, components.engine, compare.RunOptions{
			Options: compare.Options{
				Threshold: components.cfg.Threshold,
				DiffColor: diffColor,
			},
		})
		if err != nil {
			return fmt.Errorf("comparison failed: %w", err)
		}

		for _, r := range results {
			components.metrics.RecordComparison(metrics.ComparisonMetric{
				ID:             r.ID,
				Match:          r.Match,
				Reason:         string(r.Reason),
				DiffPercentage: r.DiffPercentage,
				Timestamp:      time.Now(),
			})
		}

		components.formatter.PrintResults()

		outcome := runner.BuildOutcome(uuid.NewString(), runner.ModeTest, nil, results, time.Since(start))

		return reportOutcome(components.formatter, outcome)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
