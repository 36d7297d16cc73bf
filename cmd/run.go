package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/browser"
	"github.com/pixelgate/pixelgate/internal/compare"
	"github.com/pixelgate/pixelgate/internal/config"
	"github.com/pixelgate/pixelgate/internal/metrics"
	"github.com/pixelgate/pixelgate/internal/output"
	"github.com/pixelgate/pixelgate/internal/runner"
	"github.com/pixelgate/pixelgate/internal/source"
	"github.com/pixelgate/pixelgate/internal/storage"
)

// runComponents holds the wired collaborators for one command invocation.
type runComponents struct {
	cfg       *config.Config
	store     *storage.FS
	engine    compare.Engine
	metrics   metrics.Collector
	formatter *output.Formatter
}

// buildComponents loads the suite configuration and wires the shared
// components every command needs.
func buildComponents(log logrus.FieldLogger) (*runComponents, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFS(log, cfg.ArtifactsDir)
	if err != nil {
		return nil, fmt.Errorf("opening artifacts directory: %w", err)
	}

	engine, err := compare.NewEngine(log, cfg.Engine)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(log)

	return &runComponents{
		cfg:       cfg,
		store:     store,
		engine:    engine,
		metrics:   collector,
		formatter: output.NewFormatter(os.Stdout, verbose, collector),
	}, nil
}

// runSuite executes a full capture run in the given mode and reports the
// outcome. A failed run returns an error so the process exits non-zero.
func runSuite(ctx context.Context, mode runner.Mode) error {
	components, err := buildComponents(Logger)
	if err != nil {
		return err
	}

	sources, err := source.Build(Logger, components.cfg.Sources)
	if err != nil {
		return err
	}

	adapters := browser.NewPool(Logger, browser.Options{
		Headless: components.cfg.HeadlessMode(),
		ExecPath: components.cfg.BrowserPath,
		Timeout:  components.cfg.CaptureTimeout,
	})

	orchestrator := runner.NewOrchestrator(&runner.OrchestratorConfig{
		Logger:    Logger,
		Config:    components.cfg,
		Sources:   sources,
		Adapters:  adapters,
		Store:     components.store,
		Engine:    components.engine,
		Metrics:   components.metrics,
		Formatter: components.formatter,
	})

	outcome, err := orchestrator.Run(ctx, mode)
	if err != nil {
		components.formatter.PrintError("Run aborted", err)
		return err
	}

	return reportOutcome(components.formatter, outcome)
}

func reportOutcome(formatter *output.Formatter, outcome *runner.Outcome) error {
	if outcome.Success() {
		formatter.PrintSuccess(fmt.Sprintf("✅ %d/%d cases passed (%s)",
			outcome.Passed, outcome.Total, output.Duration(outcome.Duration)))
		return nil
	}

	failed := outcome.Total - outcome.Passed

	return fmt.Errorf("%d of %d cases failed (%d capture failures)",
		failed, outcome.Total, outcome.CaptureFailures)
}
