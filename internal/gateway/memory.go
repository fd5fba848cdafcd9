package gateway

import (
	"context"
	"sync"
)

// MemoryGateway records the desired rule state without touching the system.
// It backs dry runs and tests.
type MemoryGateway struct {
	mu       sync.Mutex
	name     string
	enabled  bool
	enables  int
	disables int
	failWith error
}

func NewMemoryGateway(name string) *MemoryGateway {
	return &MemoryGateway{name: name}
}

func (g *MemoryGateway) Name() string {
	return g.name
}

func (g *MemoryGateway) Enable(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	g.enabled = true
	g.enables++
	return nil
}

func (g *MemoryGateway) Disable(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	g.enabled = false
	g.disables++
	return nil
}

func (g *MemoryGateway) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// Calls returns how many times Enable and Disable succeeded.
func (g *MemoryGateway) Calls() (enables, disables int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enables, g.disables
}

// FailWith makes every later call return err; nil restores normal behavior.
func (g *MemoryGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failWith = err
}
