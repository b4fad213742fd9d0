// pkg/control/state.go

// Package control orchestrates per-tick thruster allocation: it resolves
// geometry lazily, memoizes solver output behind a quantized cache, applies
// forces through the host physics interface, and reports edge-triggered
// firing transitions.
package control

import (
	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-thrustalloc/pkg/physics"
	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

// Body is what the controller needs from the host physics engine. The
// center of mass is read in the body frame; forces are applied at
// world-space points along world-space directions.
type Body interface {
	InverseMass() float64
	InverseSqrtInertia() float64
	CenterOfMass() physics.Vector2D
	WorldTransform() physics.Transform
	ApplyForce(point, direction physics.Vector2D, magnitude float64)
}

// QuantKey buckets a desired force/torque request. Two requests sharing a
// bucket reuse one cached allocation.
type QuantKey struct {
	ForceX int32
	ForceY int32
	Torque int32
}

// State is the per-body allocation state. One State per controlled body;
// nothing here is shared between bodies, which is what makes per-body
// updates safe to run in parallel.
type State struct {
	DesiredForce  physics.Vector2D
	DesiredTorque float64

	resolved        []thruster.Resolved
	resolvedVersion uint64
	hasResolved     bool

	lastSeenCoM physics.Vector2D
	firingCache map[QuantKey][]float64

	currentlyFiring map[thruster.MountID]float64

	breaker *gobreaker.CircuitBreaker
}

// NewState creates the allocation state for a newly controllable body
func NewState() *State {
	return &State{
		firingCache:     make(map[QuantKey][]float64),
		currentlyFiring: make(map[thruster.MountID]float64),
	}
}

// SetDesire sets the requested net force and torque. Force components and
// torque are fractions of available thrust in roughly [-1, 1].
func (s *State) SetDesire(force physics.Vector2D, torque float64) {
	s.DesiredForce = force
	s.DesiredTorque = torque
}

// ClearDesire zeroes the request; the next tick winds down any firing
// thrusters with StoppedFiring transitions.
func (s *State) ClearDesire() {
	s.DesiredForce = physics.Vector2D{}
	s.DesiredTorque = 0
}

// Resolved returns the current body-local thruster list, or nil when
// geometry has not been resolved yet.
func (s *State) Resolved() []thruster.Resolved {
	if !s.hasResolved {
		return nil
	}
	return s.resolved
}

// CurrentlyFiring reports whether the given thruster was active last tick
func (s *State) CurrentlyFiring(id thruster.MountID) bool {
	_, ok := s.currentlyFiring[id]
	return ok
}

// invalidateGeometry drops the resolved list and, with it, every cached
// activation vector. Activation vectors are index-aligned with the resolved
// list, so the two always share one generation.
func (s *State) invalidateGeometry() {
	s.resolved = nil
	s.hasResolved = false
	s.firingCache = make(map[QuantKey][]float64)
}

// invalidateCache drops cached allocations but keeps geometry. Used when
// the center of mass drifts: body-local mount positions are unaffected but
// every moment arm changed.
func (s *State) invalidateCache() {
	s.firingCache = make(map[QuantKey][]float64)
}
