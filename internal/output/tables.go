package output

import (
	"fmt"
	"strings"

	"github.com/pixelgate/pixelgate/internal/metrics"
)

// CapturesFormatter formats capture metrics as a table.
type CapturesFormatter struct {
	renderer *Renderer
	colors   *ColorHelper
}

// NewCapturesFormatter creates a new capture table formatter.
func NewCapturesFormatter(renderer *Renderer) *CapturesFormatter {
	return &CapturesFormatter{
		renderer: renderer,
		colors:   NewColorHelper(),
	}
}

// Format converts capture metrics into a formatted table string.
func (f *CapturesFormatter) Format(captureMetrics []metrics.CaptureMetric) string {
	if len(captureMetrics) == 0 {
		return "No captures executed"
	}

	headers := []string{"Case", "Browser", "Status", "Size", "Duration"}
	rows := make([][]string, 0, len(captureMetrics))

	for _, metric := range captureMetrics {
		status := f.colors.Success("OK")
		if !metric.Success {
			status = f.colors.Failure(truncate(metric.Error, 60))
		}

		rows = append(rows, []string{
			metric.ID,
			metric.Browser,
			status,
			Bytes(metric.SizeBytes),
			Duration(metric.Duration),
		})
	}

	return "\n" + f.colors.Header("▸ Captures") + "\n\n" + f.renderer.RenderToString(headers, rows)
}

// ResultsFormatter formats comparison results as a table with failure details.
type ResultsFormatter struct {
	renderer *Renderer
	colors   *ColorHelper
}

// NewResultsFormatter creates a new results table formatter.
func NewResultsFormatter(renderer *Renderer) *ResultsFormatter {
	return &ResultsFormatter{
		renderer: renderer,
		colors:   NewColorHelper(),
	}
}

// Format converts comparison metrics into a formatted table string.
func (f *ResultsFormatter) Format(comparisonMetrics []metrics.ComparisonMetric) string {
	if len(comparisonMetrics) == 0 {
		return "No comparisons executed"
	}

	var (
		headers = []string{"Case", "Status", "Reason", "Diff"}
		rows    = make([][]string, 0, len(comparisonMetrics))
		failed  = make([]metrics.ComparisonMetric, 0)
	)

	for _, metric := range comparisonMetrics {
		var (
			status = f.colors.FormatStatus(metric.Match)
			reason string
			diff   string
		)

		if !metric.Match {
			failed = append(failed, metric)
			reason = f.colors.Failure(metric.Reason)
		}

		if metric.DiffPercentage > 0 {
			diff = fmt.Sprintf("%.2f%%", metric.DiffPercentage)
		}

		rows = append(rows, []string{metric.ID, status, reason, diff})
	}

	output := "\n" + f.colors.Header("▸ Comparison Results") + "\n\n" + f.renderer.RenderToString(headers, rows)

	if len(failed) > 0 {
		output += f.formatFailureDetails(failed)
	}

	return output
}

func (f *ResultsFormatter) formatFailureDetails(failed []metrics.ComparisonMetric) string {
	var builder strings.Builder

	builder.WriteString("\n\n" + f.colors.Header("▸ Failed Comparisons") + "\n\n")

	for i, metric := range failed {
		builder.WriteString(fmt.Sprintf("%d. %s — %s",
			i+1,
			metric.ID,
			f.colors.Failure(metric.Reason),
		))

		if metric.DiffPercentage > 0 {
			builder.WriteString(f.colors.Muted(fmt.Sprintf(" (%.2f%% pixels changed)", metric.DiffPercentage)))
		}

		builder.WriteString("\n")
	}

	return builder.String()
}

// SummaryFormatter formats the aggregate run summary.
type SummaryFormatter struct {
	renderer *Renderer
	colors   *ColorHelper
}

// NewSummaryFormatter creates a new summary formatter.
func NewSummaryFormatter(renderer *Renderer) *SummaryFormatter {
	return &SummaryFormatter{
		renderer: renderer,
		colors:   NewColorHelper(),
	}
}

// Format converts the summary metric into a formatted table string.
func (f *SummaryFormatter) Format(summary metrics.SummaryMetric) string {
	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"Total Duration", Duration(summary.TotalDuration)},
		{"Captures", fmt.Sprintf("%d", summary.TotalCaptures)},
		{"Capture Failures", fmt.Sprintf("%d", summary.FailedCaptures)},
		{"Comparisons", fmt.Sprintf("%d", summary.TotalComparisons)},
		{"Matched", fmt.Sprintf("%d", summary.MatchedComparisons)},
		{"Screenshot Data", Bytes(summary.TotalDataSize)},
	}

	return "\n" + f.colors.Header("▸ Summary") + "\n\n" + f.renderer.RenderToString(headers, rows)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
