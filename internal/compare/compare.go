// Package compare provides pluggable screenshot comparison engines and the
// directory-level comparison run.
package compare

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/storage"
)

var errUnknownEngine = errors.New("unknown comparison engine")

// Reason classifies a non-matching comparison.
type Reason string

const (
	// ReasonNone means the artifacts matched.
	ReasonNone Reason = ""
	// ReasonPixelDiff means the diff percentage exceeded the threshold.
	ReasonPixelDiff Reason = "pixel-diff"
	// ReasonMissingCurrent means no current artifact exists for a baseline.
	ReasonMissingCurrent Reason = "missing-current"
	// ReasonMissingBase means no baseline exists for a current artifact.
	ReasonMissingBase Reason = "missing-base"
	// ReasonError means the engine failed to compare the artifacts.
	ReasonError Reason = "error"
)

// Result is the outcome of comparing one artifact pair.
type Result struct {
	ID             string
	Match          bool
	Reason         Reason
	DiffPercentage float64
	Error          string // populated when Reason is ReasonError
}

// Options tune a single comparison.
type Options struct {
	// Threshold is the maximum allowed diff percentage (0 requires a pixel
	// perfect match).
	Threshold float64
	// DiffColor highlights changed pixels in the diff artifact.
	DiffColor color.RGBA
}

// Engine compares a base and current artifact through the storage
// abstraction, optionally writing a diff artifact. Implementations must
// return missing-base/missing-current results instead of errors when an
// artifact is absent.
type Engine interface {
	Name() string
	Compare(store storage.Store, filename string, opts Options) (*Result, error)
}

// EngineFactory constructs a comparison engine.
type EngineFactory func(log logrus.FieldLogger) Engine

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]EngineFactory)
)

// RegisterEngine makes an engine factory available under a name.
func RegisterEngine(name string, factory EngineFactory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[name] = factory
}

// NewEngine constructs the named comparison engine.
func NewEngine(log logrus.FieldLogger, name string) (Engine, error) {
	enginesMu.RLock()
	factory, ok := engines[name]
	enginesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownEngine, name)
	}

	return factory(log), nil
}
