// pkg/control/fleet.go
package control

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-thrustalloc/pkg/event"
	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

// BodyID identifies a controlled body within a fleet
type BodyID uint64

// Controlled bundles everything the controller needs for one body
type Controlled struct {
	Body   Body
	Layout *thruster.Layout
	State  *State
}

// Fleet updates many independently controlled bodies in one tick. Per-body
// allocation state is fully partitioned, so bodies are processed in
// parallel; the host's Body implementations must tolerate concurrent force
// application across distinct bodies.
type Fleet struct {
	controller *Controller

	mu     sync.RWMutex
	bodies map[BodyID]*Controlled
}

// NewFleet creates an empty fleet driven by the given controller
func NewFleet(controller *Controller) *Fleet {
	return &Fleet{
		controller: controller,
		bodies:     make(map[BodyID]*Controlled),
	}
}

// Add registers a body. A fresh State is created; the same ID re-registers
// and resets allocation state.
func (f *Fleet) Add(id BodyID, body Body, layout *thruster.Layout) *Controlled {
	c := &Controlled{
		Body:   body,
		Layout: layout,
		State:  NewState(),
	}
	f.mu.Lock()
	f.bodies[id] = c
	f.mu.Unlock()
	return c
}

// Remove drops a body and its allocation state
func (f *Fleet) Remove(id BodyID) {
	f.mu.Lock()
	delete(f.bodies, id)
	f.mu.Unlock()
}

// Get returns the controlled bundle for a body, or nil
func (f *Fleet) Get(id BodyID) *Controlled {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bodies[id]
}

// Len returns the number of controlled bodies
func (f *Fleet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.bodies)
}

// UpdateAll runs one allocation tick for every body, in parallel, and
// returns each body's firing transitions. Per-body solver failures are
// logged by the controller and do not abort the tick for other bodies; only
// context cancellation fails the whole update.
func (f *Fleet) UpdateAll(ctx context.Context) (map[BodyID][]event.Transition, error) {
	f.mu.RLock()
	snapshot := make(map[BodyID]*Controlled, len(f.bodies))
	for id, c := range f.bodies {
		snapshot[id] = c
	}
	f.mu.RUnlock()

	var resultMu sync.Mutex
	results := make(map[BodyID][]event.Transition, len(snapshot))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for id, c := range snapshot {
		id, c := id, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			transitions, _ := f.controller.Update(ctx, c.Body, c.Layout, c.State)
			if len(transitions) > 0 {
				resultMu.Lock()
				results[id] = transitions
				resultMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
