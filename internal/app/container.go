package app

import (
	"fmt"
	"sync"

	"github.com/MrWong99/tablepatch/pkg/host"
)

var _ host.Container = (*Container)(nil)

// Container is the harness's stand-in for the host's dependency container.
// It is safe for concurrent use.
type Container struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewContainer returns an empty [Container].
func NewContainer() *Container {
	return &Container{services: make(map[string]any)}
}

// Register stores svc under name, replacing any previous service.
func (c *Container) Register(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = svc
}

// Resolve implements [host.Container].
func (c *Container) Resolve(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	svc, ok := c.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", host.ErrServiceNotRegistered, name)
	}
	return svc, nil
}
