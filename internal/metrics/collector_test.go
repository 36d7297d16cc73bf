package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestCollector_Summary(t *testing.T) {
	t.Parallel()

	c := NewCollector(logrus.New())
	require.NoError(t, c.Start(context.Background()))

	c.RecordCapture(CaptureMetric{ID: "a", Success: true, SizeBytes: 100, Duration: time.Second})
	c.RecordCapture(CaptureMetric{ID: "b", Success: false, Error: "timeout"})
	c.RecordComparison(ComparisonMetric{ID: "a", Match: true})
	c.RecordComparison(ComparisonMetric{ID: "c", Match: false, Reason: "pixel-diff"})

	summary := c.GetSummary()
	require.Equal(t, 2, summary.TotalCaptures)
	require.Equal(t, 1, summary.FailedCaptures)
	require.Equal(t, 2, summary.TotalComparisons)
	require.Equal(t, 1, summary.MatchedComparisons)
	require.Equal(t, int64(100), summary.TotalDataSize)

	require.Len(t, c.GetCaptureMetrics(), 2)
	require.Len(t, c.GetComparisonMetrics(), 2)
	require.NoError(t, c.Stop())
}
