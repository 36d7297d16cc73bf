// Package runner provides end-to-end visual regression run orchestration.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/browser"
	"github.com/pixelgate/pixelgate/internal/compare"
	"github.com/pixelgate/pixelgate/internal/config"
	"github.com/pixelgate/pixelgate/internal/metrics"
	"github.com/pixelgate/pixelgate/internal/output"
	"github.com/pixelgate/pixelgate/internal/pool"
	"github.com/pixelgate/pixelgate/internal/source"
	"github.com/pixelgate/pixelgate/internal/storage"
)

// Mode selects where captures are persisted and whether they are compared.
type Mode string

const (
	// ModeTest captures into "current" and compares against "base".
	ModeTest Mode = "test"
	// ModeUpdate captures into "base" and skips comparison.
	ModeUpdate Mode = "update"
)

var errNoRegisteredAdapter = errors.New("no registered adapter")

// OrchestratorConfig contains the collaborators for run orchestration.
type OrchestratorConfig struct {
	Logger    logrus.FieldLogger
	Config    *config.Config
	Sources   []source.Source
	Adapters  *browser.Pool
	Store     storage.Store
	Engine    compare.Engine
	Metrics   metrics.Collector
	Formatter *output.Formatter
	Retry     *RetryPolicy
}

// Orchestrator coordinates discovery, expansion, capture, comparison and
// outcome aggregation for one run.
// This is the concrete implementation without an interface abstraction.
type Orchestrator struct {
	cfg       *config.Config
	sources   []source.Source
	adapters  *browser.Pool
	store     storage.Store
	engine    compare.Engine
	metrics   metrics.Collector
	formatter *output.Formatter
	resources *ResourceRegistry
	retry     RetryPolicy
	log       logrus.FieldLogger

	writtenMu sync.Mutex
	written   []writtenArtifact
}

type writtenArtifact struct {
	kind storage.Kind
	name string
}

// NewOrchestrator creates a run orchestrator and registers its disposable
// resources for the guaranteed cleanup phase.
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	retry := DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	o := &Orchestrator{
		cfg:       cfg.Config,
		sources:   cfg.Sources,
		adapters:  cfg.Adapters,
		store:     cfg.Store,
		engine:    cfg.Engine,
		metrics:   cfg.Metrics,
		formatter: cfg.Formatter,
		resources: NewResourceRegistry(cfg.Logger),
		retry:     retry,
		log:       cfg.Logger.WithField("component", "run_orchestrator"),
	}

	o.resources.Register("adapter_pool", func() error {
		o.adapters.DisposeAll()
		return nil
	})

	for _, s := range cfg.Sources {
		o.resources.Register("source:"+s.Name(), s.Stop)
	}

	return o
}

// Run executes one full visual regression run. Fatal errors (discovery,
// adapter setup) propagate after partial artifacts are removed; per-item
// failures are folded into the outcome. Cleanup of pooled adapters and
// sources is guaranteed on every path.
func (o *Orchestrator) Run(ctx context.Context, mode Mode) (*Outcome, error) {
	runID := uuid.NewString()
	log := o.log.WithFields(logrus.Fields{
		"run_id": runID,
		"mode":   mode,
	})

	defer o.resources.DisposeAll()

	start := time.Now()

	if err := o.metrics.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting metrics collector: %w", err)
	}

	defer func() {
		if stopErr := o.metrics.Stop(); stopErr != nil {
			log.WithError(stopErr).Warn("failed to stop metrics collector")
		}
	}()

	// Unknown browser names and an unparseable diff color are setup errors;
	// fail before any capture is scheduled rather than once per instance.
	for _, name := range o.cfg.Browsers {
		if !browser.Supported(name) {
			return nil, &AdapterInitError{Browser: name, Err: errNoRegisteredAdapter}
		}
	}

	diffColor, err := o.cfg.ParseDiffColor()
	if err != nil {
		return nil, err
	}

	o.formatter.PrintPhase("Discovering test cases")

	cases, err := Discover(ctx, log, o.sources, o.retry)
	if err != nil {
		o.removeWrittenArtifacts()
		return nil, err
	}

	instances, err := Expand(cases, o.cfg)
	if err != nil {
		o.removeWrittenArtifacts()
		return nil, err
	}

	o.formatter.PrintProgress(fmt.Sprintf("%d cases expanded into %d instances", len(cases), len(instances)), 0)

	kind := storage.KindCurrent
	if mode == ModeUpdate {
		kind = storage.KindBase
	}

	o.formatter.PrintPhase("Capturing screenshots")

	captures := o.captureAll(ctx, instances, kind)

	o.formatter.PrintCaptures()

	var comparisons []*compare.Result
	if mode == ModeTest {
		o.formatter.PrintPhase("Comparing against baselines")

		comparisons, err = compare.Run(log, o.store, o.engine, compare.RunOptions{
			Options: compare.Options{
				Threshold: o.cfg.Threshold,
				DiffColor: diffColor,
			},
			Thresholds: thresholdOverrides(instances),
		})
		if err != nil {
			o.removeWrittenArtifacts()
			return nil, err
		}

		for _, c := range comparisons {
			o.metrics.RecordComparison(metrics.ComparisonMetric{
				ID:             c.ID,
				Match:          c.Match,
				Reason:         string(c.Reason),
				DiffPercentage: c.DiffPercentage,
				Timestamp:      time.Now(),
			})
		}

		o.formatter.PrintResults()
	}

	outcome := BuildOutcome(runID, mode, captures, comparisons, time.Since(start))

	o.formatter.PrintSummary()

	log.WithFields(logrus.Fields{
		"total":            outcome.Total,
		"passed":           outcome.Passed,
		"capture_failures": outcome.CaptureFailures,
		"duration":         outcome.Duration,
	}).Info("run complete")

	return outcome, nil
}

// captureAll drives the concurrency pool over the expanded instances. The
// fixed worker count is the backpressure mechanism; instances were fully
// expanded in memory before scheduling.
func (o *Orchestrator) captureAll(ctx context.Context, instances []*Instance, kind storage.Kind) []*CaptureResult {
	concurrency := o.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}

	return pool.ForEach(ctx, instances, concurrency, func(ctx context.Context, _ int, inst *Instance) *CaptureResult {
		return o.captureOne(ctx, inst, kind)
	})
}

// captureOne executes one capture with item-level failure isolation: any
// adapter, timeout or persistence error is recorded on the result and never
// aborts the rest of the pool.
func (o *Orchestrator) captureOne(ctx context.Context, inst *Instance, kind storage.Kind) *CaptureResult {
	result := &CaptureResult{
		ID:       inst.ID(),
		Browser:  inst.Browser,
		Filename: inst.ArtifactName(),
	}

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		o.recordCapture(result)
	}()

	browserName := inst.Browser
	if browserName == "" {
		browserName = o.cfg.Browsers[0]
	}

	adapter, err := o.adapters.Get(ctx, browserName)
	if err != nil {
		result.Error = fmt.Sprintf("acquiring adapter: %v", err)
		return result
	}

	shot, err := o.captureWithDeadline(ctx, adapter, inst)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	path, err := o.store.Write(kind, inst.ArtifactName(), shot.Data)
	if err != nil {
		result.Error = fmt.Sprintf("persisting artifact: %v", err)
		return result
	}

	result.Path = path
	result.Size = int64(len(shot.Data))
	o.trackArtifact(kind, inst.ArtifactName())

	return result
}

// captureWithDeadline races the capture against a wall-clock deadline. The
// deadline stops the orchestrator from waiting; the context carries it into
// the backend for best-effort cancellation, but the in-flight call is not
// guaranteed to be aborted.
func (o *Orchestrator) captureWithDeadline(ctx context.Context, adapter browser.Adapter, inst *Instance) (*browser.Screenshot, error) {
	timeout := o.cfg.CaptureTimeout
	if timeout <= 0 {
		timeout = config.DefaultCaptureTimeout
	}

	captureCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type captureReply struct {
		shot *browser.Screenshot
		err  error
	}

	done := make(chan captureReply, 1)
	go func() {
		shot, err := adapter.Capture(captureCtx, browser.Request{
			URL:          inst.URL,
			Target:       inst.ScreenshotTarget,
			Viewport:     inst.Viewport,
			Interactions: inst.Interactions,
		})
		done <- captureReply{shot: shot, err: err}
	}()

	select {
	case reply := <-done:
		if reply.err != nil {
			return nil, fmt.Errorf("capturing: %w", reply.err)
		}
		return reply.shot, nil
	case <-captureCtx.Done():
		if errors.Is(captureCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("capture timed out after %s", timeout)
		}
		return nil, captureCtx.Err()
	}
}

func (o *Orchestrator) recordCapture(result *CaptureResult) {
	o.metrics.RecordCapture(metrics.CaptureMetric{
		ID:        result.ID,
		Browser:   result.Browser,
		Success:   result.OK(),
		SizeBytes: result.Size,
		Duration:  result.Duration,
		Error:     result.Error,
		Timestamp: time.Now(),
	})

	if !result.OK() {
		o.log.WithFields(logrus.Fields{
			"case":    result.ID,
			"browser": result.Browser,
		}).Error(result.Error)
	}
}

func (o *Orchestrator) trackArtifact(kind storage.Kind, name string) {
	o.writtenMu.Lock()
	defer o.writtenMu.Unlock()
	o.written = append(o.written, writtenArtifact{kind: kind, name: name})
}

// removeWrittenArtifacts deletes artifacts persisted by an aborted run so a
// fatal error does not leave a half-written current set behind.
func (o *Orchestrator) removeWrittenArtifacts() {
	o.writtenMu.Lock()
	written := o.written
	o.written = nil
	o.writtenMu.Unlock()

	for _, artifact := range written {
		if err := o.store.Remove(artifact.kind, artifact.name); err != nil {
			o.log.WithError(err).WithField("artifact", artifact.name).Warn("failed to remove partial artifact")
		}
	}
}

func thresholdOverrides(instances []*Instance) map[string]float64 {
	overrides := make(map[string]float64, len(instances))
	for _, inst := range instances {
		overrides[inst.ArtifactName()] = inst.Threshold
	}
	return overrides
}
