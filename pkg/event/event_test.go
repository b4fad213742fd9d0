// pkg/event/event_test.go
package event

import (
	"testing"

	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var started []Transition
	bus.Subscribe(StartedFiring, func(tr Transition) {
		started = append(started, tr)
	})

	var stopped int
	bus.Subscribe(StoppedFiring, func(Transition) {
		stopped++
	})

	bus.Publish(Transition{
		Kind:       StartedFiring,
		Thruster:   thruster.MountID{Owner: 1, Index: 2},
		Activation: 0.75,
	})

	if len(started) != 1 {
		t.Fatalf("StartedFiring handler called %d times, expected 1", len(started))
	}
	if started[0].Activation != 0.75 {
		t.Errorf("Activation = %v, expected 0.75", started[0].Activation)
	}
	if started[0].Thruster != (thruster.MountID{Owner: 1, Index: 2}) {
		t.Errorf("Thruster = %v, expected {1 2}", started[0].Thruster)
	}
	if stopped != 0 {
		t.Errorf("StoppedFiring handler called %d times for a start, expected 0", stopped)
	}
}

func TestBus_MultipleHandlers(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(StoppedFiring, func(Transition) { calls++ })
	bus.Subscribe(StoppedFiring, func(Transition) { calls++ })

	bus.Publish(Transition{Kind: StoppedFiring})
	if calls != 2 {
		t.Errorf("handlers called %d times, expected 2", calls)
	}
}

func TestBus_PublishAllPreservesOrder(t *testing.T) {
	bus := NewBus()
	var order []Kind
	record := func(tr Transition) { order = append(order, tr.Kind) }
	bus.Subscribe(StartedFiring, record)
	bus.Subscribe(StoppedFiring, record)

	bus.PublishAll([]Transition{
		{Kind: StartedFiring, Thruster: thruster.MountID{Index: 0}},
		{Kind: StartedFiring, Thruster: thruster.MountID{Index: 1}},
		{Kind: StoppedFiring, Thruster: thruster.MountID{Index: 2}},
	})

	expected := []Kind{StartedFiring, StartedFiring, StoppedFiring}
	if len(order) != len(expected) {
		t.Fatalf("recorded %d transitions, expected %d", len(order), len(expected))
	}
	for i, kind := range expected {
		if order[i] != kind {
			t.Errorf("order[%d] = %v, expected %v", i, order[i], kind)
		}
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic.
	bus.Publish(Transition{Kind: StartedFiring})
}
