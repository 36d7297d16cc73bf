// Package output provides clean, human-friendly run output.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/pixelgate/pixelgate/internal/metrics"
)

// Formatter provides clean, human-friendly output.
type Formatter struct {
	writer  io.Writer
	verbose bool

	metrics metrics.Collector

	capturesFormatter *CapturesFormatter
	resultsFormatter  *ResultsFormatter
	summaryFormatter  *SummaryFormatter

	green *color.Color
	red   *color.Color
	blue  *color.Color
	gray  *color.Color
}

// NewFormatter creates a new output formatter.
func NewFormatter(writer io.Writer, verbose bool, metricsCollector metrics.Collector) *Formatter {
	renderer := NewRenderer()

	return &Formatter{
		writer:            writer,
		verbose:           verbose,
		metrics:           metricsCollector,
		capturesFormatter: NewCapturesFormatter(renderer),
		resultsFormatter:  NewResultsFormatter(renderer),
		summaryFormatter:  NewSummaryFormatter(renderer),
		green:             color.New(color.FgGreen),
		red:               color.New(color.FgRed),
		blue:              color.New(color.FgBlue),
		gray:              color.New(color.FgHiBlack),
	}
}

// PrintPhase prints a phase separator.
func (f *Formatter) PrintPhase(phase string) {
	f.blue.Fprintf(f.writer, "\n▸ %s\n", phase)
}

// PrintProgress prints progress with timing.
func (f *Formatter) PrintProgress(message string, duration time.Duration) {
	if duration > 0 {
		f.gray.Fprintf(f.writer, "%s (%s)\n", message, Duration(duration))
	} else {
		fmt.Fprintf(f.writer, "%s\n", message)
	}
}

// PrintSuccess prints a success message.
func (f *Formatter) PrintSuccess(message string) {
	f.green.Fprintf(f.writer, "%s\n", message)
}

// PrintError prints a message with error details.
func (f *Formatter) PrintError(message string, err error) {
	f.red.Fprintf(f.writer, "%s", message)
	if err != nil {
		f.red.Fprintf(f.writer, ": %v", err)
	}
	fmt.Fprintf(f.writer, "\n")
}

// PrintCaptures prints a table of capture metrics.
func (f *Formatter) PrintCaptures() {
	fmt.Fprintln(f.writer, f.capturesFormatter.Format(f.metrics.GetCaptureMetrics()))
}

// PrintResults prints a table of comparison results.
func (f *Formatter) PrintResults() {
	fmt.Fprintln(f.writer, f.resultsFormatter.Format(f.metrics.GetComparisonMetrics()))
}

// PrintSummary prints the aggregate summary table.
func (f *Formatter) PrintSummary() {
	fmt.Fprintln(f.writer, f.summaryFormatter.Format(f.metrics.GetSummary()))
}
