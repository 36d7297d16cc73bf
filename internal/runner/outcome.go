package runner

import (
	"time"

	"github.com/pixelgate/pixelgate/internal/compare"
)

// CaptureResult records the capture of one instance. A failed capture
// carries the failure text in Error instead of raising; per-item failures
// never abort the run.
type CaptureResult struct {
	ID       string
	Browser  string
	Filename string
	Path     string
	Error    string
	Size     int64
	Duration time.Duration
}

// OK reports whether the capture succeeded.
func (r *CaptureResult) OK() bool {
	return r.Error == ""
}

// Status classifies one case in the run outcome. The categories are
// mutually exclusive.
type Status string

const (
	// StatusPassed means the case was captured and matched its baseline
	// (or, in update mode, was captured successfully).
	StatusPassed Status = "passed"
	// StatusCaptureFailed means the case never reached comparison.
	StatusCaptureFailed Status = "capture-failed"
	// StatusDiff means the comparison exceeded the threshold.
	StatusDiff Status = "diff"
	// StatusMissingCurrent means the baseline has no current counterpart.
	StatusMissingCurrent Status = "missing-current"
	// StatusMissingBase means the current artifact has no baseline.
	StatusMissingBase Status = "missing-base"
	// StatusError means the comparison engine failed.
	StatusError Status = "error"
)

// CaseOutcome is the per-case detail in the run outcome.
type CaseOutcome struct {
	ID             string
	Browser        string
	Status         Status
	DiffPercentage float64
	Error          string
	Duration       time.Duration
}

// Outcome is the aggregate result of one run. It is built once and
// read-only thereafter.
type Outcome struct {
	RunID    string
	Mode     Mode
	Duration time.Duration

	Total                int
	Passed               int
	FailedDiffs          int
	FailedMissingCurrent int
	FailedMissingBase    int
	FailedErrors         int
	CaptureFailures      int

	Cases []CaseOutcome
}

// Success reports whether the run passed: any single failure category fails
// the run.
func (o *Outcome) Success() bool {
	return o.Passed == o.Total && o.CaptureFailures == 0
}

// ContentFailures returns the cases that compared but did not pass.
func (o *Outcome) ContentFailures() []CaseOutcome {
	failures := make([]CaseOutcome, 0)
	for _, c := range o.Cases {
		switch c.Status {
		case StatusDiff, StatusMissingCurrent, StatusMissingBase, StatusError:
			failures = append(failures, c)
		}
	}
	return failures
}

// CaptureFailureCases returns the cases that never reached comparison.
func (o *Outcome) CaptureFailureCases() []CaseOutcome {
	failures := make([]CaseOutcome, 0)
	for _, c := range o.Cases {
		if c.Status == StatusCaptureFailed {
			failures = append(failures, c)
		}
	}
	return failures
}

// BuildOutcome merges capture and comparison results into one outcome.
// Comparison results with no matching capture (stale artifacts found on
// disk) are counted too, so baseline drift is never hidden.
func BuildOutcome(runID string, mode Mode, captures []*CaptureResult, comparisons []*compare.Result, duration time.Duration) *Outcome {
	outcome := &Outcome{
		RunID:    runID,
		Mode:     mode,
		Duration: duration,
		Cases:    make([]CaseOutcome, 0, len(captures)+len(comparisons)),
	}

	byID := make(map[string]*compare.Result, len(comparisons))
	for _, c := range comparisons {
		byID[c.ID] = c
	}

	seen := make(map[string]bool, len(captures))

	for _, capture := range captures {
		outcome.Total++

		// Every captured instance claims its ID here, successful or not, so
		// the stale-comparison loop below never reclassifies a case that
		// already counted as a capture failure.
		seen[capture.ID] = true

		if !capture.OK() {
			outcome.CaptureFailures++
			outcome.Cases = append(outcome.Cases, CaseOutcome{
				ID:       capture.ID,
				Browser:  capture.Browser,
				Status:   StatusCaptureFailed,
				Error:    capture.Error,
				Duration: capture.Duration,
			})

			continue
		}

		if mode == ModeUpdate {
			outcome.Passed++
			outcome.Cases = append(outcome.Cases, CaseOutcome{
				ID:       capture.ID,
				Browser:  capture.Browser,
				Status:   StatusPassed,
				Duration: capture.Duration,
			})

			continue
		}

		outcome.addComparison(byID[capture.ID], capture)
	}

	for _, c := range comparisons {
		if seen[c.ID] {
			continue
		}

		outcome.Total++
		outcome.addComparison(c, nil)
	}

	return outcome
}

func (o *Outcome) addComparison(c *compare.Result, capture *CaptureResult) {
	caseOutcome := CaseOutcome{}
	if capture != nil {
		caseOutcome.ID = capture.ID
		caseOutcome.Browser = capture.Browser
		caseOutcome.Duration = capture.Duration
	}

	if c == nil {
		// A successful capture always leaves a current artifact, so the
		// comparison run must have produced a result for it.
		o.FailedErrors++
		caseOutcome.Status = StatusError
		caseOutcome.Error = "no comparison result for captured artifact"
		o.Cases = append(o.Cases, caseOutcome)

		return
	}

	if caseOutcome.ID == "" {
		caseOutcome.ID = c.ID
	}
	caseOutcome.DiffPercentage = c.DiffPercentage

	switch {
	case c.Match:
		o.Passed++
		caseOutcome.Status = StatusPassed
	case c.Reason == compare.ReasonPixelDiff:
		o.FailedDiffs++
		caseOutcome.Status = StatusDiff
	case c.Reason == compare.ReasonMissingCurrent:
		o.FailedMissingCurrent++
		caseOutcome.Status = StatusMissingCurrent
	case c.Reason == compare.ReasonMissingBase:
		o.FailedMissingBase++
		caseOutcome.Status = StatusMissingBase
	default:
		o.FailedErrors++
		caseOutcome.Status = StatusError
		caseOutcome.Error = c.Error
	}

	o.Cases = append(o.Cases, caseOutcome)
}
