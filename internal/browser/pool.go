package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var errPoolDisposed = errors.New("adapter pool already disposed")

// Pool lazily creates and memoizes one adapter per browser name. Concurrent
// first access for the same name resolves every caller to the same handle,
// with the factory and initialization executing exactly once per key.
type Pool struct {
	log        logrus.FieldLogger
	opts       Options
	newAdapter func(log logrus.FieldLogger, name string) (Adapter, error)

	mu       sync.Mutex
	entries  map[string]*poolEntry
	disposed bool
}

type poolEntry struct {
	ready   chan struct{}
	adapter Adapter
	err     error
}

// NewPool creates an adapter pool using the registered factories.
func NewPool(log logrus.FieldLogger, opts Options) *Pool {
	return &Pool{
		log:        log.WithField("component", "adapter_pool"),
		opts:       opts,
		newAdapter: New,
		entries:    make(map[string]*poolEntry),
	}
}

// Get returns the adapter for the browser name, creating and initializing it
// on first use. Callers racing on the same name block until the single
// in-flight creation finishes and then share its outcome.
func (p *Pool) Get(ctx context.Context, name string) (Adapter, error) {
	p.mu.Lock()

	if p.disposed {
		p.mu.Unlock()
		return nil, errPoolDisposed
	}

	entry, ok := p.entries[name]
	if ok {
		p.mu.Unlock()

		select {
		case <-entry.ready:
			return entry.adapter, entry.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	entry = &poolEntry{ready: make(chan struct{})}
	p.entries[name] = entry
	p.mu.Unlock()

	// Creation runs outside the lock; the map entry guarantees a single
	// in-flight initialization per key.
	adapter, err := p.newAdapter(p.log, name)
	if err == nil {
		if initErr := adapter.Init(ctx, name, p.opts); initErr != nil {
			err = fmt.Errorf("initializing %s adapter: %w", name, initErr)
			adapter = nil
		}
	}

	entry.adapter = adapter
	entry.err = err
	close(entry.ready)

	if err != nil {
		p.log.WithError(err).WithField("browser", name).Error("adapter initialization failed")
	} else {
		p.log.WithField("browser", name).Debug("adapter initialized")
	}

	return entry.adapter, entry.err
}

// DisposeAll tears down every pooled adapter. Individual teardown failures
// are logged and do not prevent disposing the remaining handles. The call is
// idempotent.
func (p *Pool) DisposeAll() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true

	entries := make(map[string]*poolEntry, len(p.entries))
	for name, entry := range p.entries {
		entries[name] = entry
	}
	p.mu.Unlock()

	for name, entry := range entries {
		<-entry.ready

		if entry.adapter == nil {
			continue
		}

		if err := entry.adapter.Dispose(); err != nil {
			p.log.WithError(err).WithField("browser", name).Warn("failed to dispose adapter")
			continue
		}

		p.log.WithField("browser", name).Debug("adapter disposed")
	}
}
