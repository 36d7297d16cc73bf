// Package browser provides browser automation adapters and the per-run
// adapter pool.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var errUnknownBrowser = errors.New("unknown browser")

// Viewport is the emulated window size for a capture.
type Viewport struct {
	Width  int
	Height int
}

// Interaction is a page interaction executed before the screenshot.
type Interaction struct {
	Type     string // click, hover, type, wait, sleep
	Selector string
	Value    string
}

// Request describes one capture operation.
type Request struct {
	URL          string
	Target       string // CSS selector; empty captures the full page
	Viewport     Viewport
	Interactions []Interaction
}

// Screenshot is the result of a capture operation.
type Screenshot struct {
	Data []byte
}

// Options configures adapter initialization.
type Options struct {
	Headless bool
	ExecPath string // explicit browser binary, overrides per-name lookup
	Timeout  time.Duration
}

// Adapter is an initialized browser automation backend. Handles are owned
// exclusively by the Pool for the run's lifetime and disposed exactly once.
type Adapter interface {
	Name() string
	Init(ctx context.Context, browserName string, opts Options) error
	Capture(ctx context.Context, req Request) (*Screenshot, error)
	Dispose() error
}

// Factory constructs an uninitialized Adapter.
type Factory func(log logrus.FieldLogger) Adapter

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a factory available under a browser name. Adapters are
// selected by name at startup rather than loaded dynamically.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// Names returns every registered browser name, sorted.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Supported reports whether a browser name has a registered factory.
func Supported(name string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// New constructs an uninitialized adapter for the browser name.
func New(log logrus.FieldLogger, name string) (Adapter, error) {
	factoriesMu.RLock()
	factory, ok := factories[name]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownBrowser, name)
	}

	return factory(log), nil
}
