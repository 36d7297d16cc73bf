package runner

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ResourceRegistry owns the disposable resources of one run. The
// orchestrator registers pooled adapters and discovery sources here and
// tears everything down in one guaranteed cleanup phase, instead of relying
// on ambient global state.
type ResourceRegistry struct {
	log logrus.FieldLogger

	mu        sync.Mutex
	resources []registeredResource
	disposed  bool
}

type registeredResource struct {
	name  string
	close func() error
}

// NewResourceRegistry creates an empty registry.
func NewResourceRegistry(log logrus.FieldLogger) *ResourceRegistry {
	return &ResourceRegistry{
		log: log.WithField("component", "resource_registry"),
	}
}

// Register adds a resource. Registration after disposal closes the resource
// immediately so late registrations cannot leak.
func (r *ResourceRegistry) Register(name string, close func() error) {
	r.mu.Lock()

	if r.disposed {
		r.mu.Unlock()
		r.closeOne(registeredResource{name: name, close: close})
		return
	}

	r.resources = append(r.resources, registeredResource{name: name, close: close})
	r.mu.Unlock()
}

// DisposeAll closes every registered resource in reverse registration order.
// Failures are logged and never propagated; the call is idempotent.
func (r *ResourceRegistry) DisposeAll() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.disposed = true

	resources := make([]registeredResource, len(r.resources))
	copy(resources, r.resources)
	r.resources = nil
	r.mu.Unlock()

	for i := len(resources) - 1; i >= 0; i-- {
		r.closeOne(resources[i])
	}
}

func (r *ResourceRegistry) closeOne(res registeredResource) {
	if err := res.close(); err != nil {
		r.log.WithError(err).WithField("resource", res.name).Warn("failed to dispose resource")
		return
	}

	r.log.WithField("resource", res.name).Debug("resource disposed")
}
