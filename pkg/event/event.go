// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

// Kind represents the type of firing transition
type Kind string

// Firing transitions are edge-triggered: each is emitted at most once per
// actual state change of a thruster between consecutive ticks.
const (
	StartedFiring Kind = "started_firing"
	StoppedFiring Kind = "stopped_firing"
)

// Transition records one thruster changing firing state during a tick.
// Activation carries the commanded fraction for StartedFiring and is zero
// for StoppedFiring.
type Transition struct {
	Kind       Kind
	Thruster   thruster.MountID
	Activation float64
}

// Handler is a function that handles firing transitions
type Handler func(Transition)

// Bus fans transitions out to subscribers. The controller itself returns
// transitions to its caller; a Bus is an optional convenience the caller
// owns when several consumers want the stream.
type Bus struct {
	handlers map[Kind][]Handler
	mu       sync.RWMutex
}

// NewBus creates a new transition bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Kind][]Handler),
	}
}

// Subscribe registers a handler for a transition kind
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Publish sends one transition to all handlers subscribed to its kind
func (b *Bus) Publish(t Transition) {
	b.mu.RLock()
	handlers := b.handlers[t.Kind]
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(t)
	}
}

// PublishAll publishes a tick's worth of transitions in order
func (b *Bus) PublishAll(transitions []Transition) {
	for _, t := range transitions {
		b.Publish(t)
	}
}
