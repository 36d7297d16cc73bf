// Package source provides test case discovery sources.
package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/browser"
	"github.com/pixelgate/pixelgate/internal/config"
)

var errUnknownSource = errors.New("unknown source type")

// CaseMeta is abstract test case metadata produced by a source. URL may be
// absolute or relative to the source's base URL.
type CaseMeta struct {
	ID               string
	Variant          string
	URL              string
	ScreenshotTarget string
	Viewport         string // named viewport; resolved during expansion
	Threshold        *float64
	Interactions     []browser.Interaction
	Browsers         []string // restriction; empty allows all configured browsers
}

// Source is a pluggable test case source.
type Source interface {
	Name() string
	// Start prepares the source and returns its base URL, if any. Sources
	// whose runtime environment may not be ready yet should surface that as
	// an error; the discovery boundary retries with backoff.
	Start(ctx context.Context) (string, error)
	ListCases(ctx context.Context) ([]CaseMeta, error)
	Stop() error
}

// Factory constructs a source from its configuration block.
type Factory func(log logrus.FieldLogger, cfg config.Source) (Source, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a source factory available under a type name.
func Register(typeName string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[typeName] = factory
}

// New constructs a source for the configuration block.
func New(log logrus.FieldLogger, cfg config.Source) (Source, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownSource, cfg.Type)
	}

	return factory(log, cfg)
}

// Build constructs every configured source.
func Build(log logrus.FieldLogger, cfgs []config.Source) ([]Source, error) {
	sources := make([]Source, 0, len(cfgs))
	for _, cfg := range cfgs {
		s, err := New(log, cfg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	return sources, nil
}
