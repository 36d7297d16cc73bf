// Package metrics provides run execution metrics collection and aggregation.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CaptureMetric captures metrics about one screenshot capture.
type CaptureMetric struct {
	ID        string
	Browser   string
	Success   bool
	SizeBytes int64
	Duration  time.Duration
	Error     string // empty on success
	Timestamp time.Time
}

// ComparisonMetric captures metrics about one artifact comparison.
type ComparisonMetric struct {
	ID             string
	Match          bool
	Reason         string
	DiffPercentage float64
	Timestamp      time.Time
}

// SummaryMetric provides aggregate statistics across the run.
type SummaryMetric struct {
	TotalDuration      time.Duration
	TotalCaptures      int
	FailedCaptures     int
	TotalComparisons   int
	MatchedComparisons int
	TotalDataSize      int64 // bytes
}

// Collector interface for metrics collection.
type Collector interface {
	Start(ctx context.Context) error
	Stop() error
	RecordCapture(metric CaptureMetric)
	RecordComparison(metric ComparisonMetric)
	GetCaptureMetrics() []CaptureMetric
	GetComparisonMetrics() []ComparisonMetric
	GetSummary() SummaryMetric
}

// collector implements Collector.
type collector struct {
	log               logrus.FieldLogger
	mu                sync.RWMutex
	captureMetrics    []CaptureMetric
	comparisonMetrics []ComparisonMetric
	startTime         time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(log logrus.FieldLogger) Collector {
	return &collector{
		log:               log.WithField("component", "metrics_collector"),
		captureMetrics:    make([]CaptureMetric, 0, 100), // capacity hint
		comparisonMetrics: make([]ComparisonMetric, 0, 100),
	}
}

func (c *collector) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()

	c.log.Debug("metrics collector started")

	return nil
}

func (c *collector) Stop() error {
	c.log.Debug("metrics collector stopped")

	return nil
}

func (c *collector) RecordCapture(metric CaptureMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captureMetrics = append(c.captureMetrics, metric)
}

func (c *collector) RecordComparison(metric ComparisonMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comparisonMetrics = append(c.comparisonMetrics, metric)
}

func (c *collector) GetCaptureMetrics() []CaptureMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CaptureMetric, len(c.captureMetrics))
	copy(out, c.captureMetrics)

	return out
}

func (c *collector) GetComparisonMetrics() []ComparisonMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ComparisonMetric, len(c.comparisonMetrics))
	copy(out, c.comparisonMetrics)

	return out
}

func (c *collector) GetSummary() SummaryMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := SummaryMetric{
		TotalCaptures:    len(c.captureMetrics),
		TotalComparisons: len(c.comparisonMetrics),
	}

	if !c.startTime.IsZero() {
		summary.TotalDuration = time.Since(c.startTime)
	}

	for _, m := range c.captureMetrics {
		if !m.Success {
			summary.FailedCaptures++
		}
		summary.TotalDataSize += m.SizeBytes
	}

	for _, m := range c.comparisonMetrics {
		if m.Match {
			summary.MatchedComparisons++
		}
	}

	return summary
}
