// pkg/control/controller.go
package control

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-thrustalloc/pkg/allocator"
	"github.com/opd-ai/go-thrustalloc/pkg/config"
	"github.com/opd-ai/go-thrustalloc/pkg/event"
	"github.com/opd-ai/go-thrustalloc/pkg/logging"
	"github.com/opd-ai/go-thrustalloc/pkg/physics"
	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

// ErrNoGeometry is returned by acceleration estimation when the body's
// thruster layout has not been resolved yet.
var ErrNoGeometry = errors.New("thruster geometry not resolved")

// Controller drives the per-tick allocation of every controlled body. It is
// stateless apart from configuration; all per-body state lives in State, so
// one Controller can serve many bodies, concurrently if the host's Body
// implementation allows it.
type Controller struct {
	config *config.Config
	logger *logging.Logger
}

// NewController creates a controller with the given configuration. A nil
// config uses defaults.
func NewController(cfg *config.Config, logger *logging.Logger) *Controller {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &Controller{
		config: cfg,
		logger: logger,
	}
}

// Update runs one allocation tick for one body and returns the firing
// transitions that tick produced, starts before stops.
//
// With a non-zero desire it resolves geometry if stale, refreshes the cache
// against center-of-mass drift, looks up or computes the activation vector,
// and applies each active thruster's force through the host. With a zero
// desire it applies nothing but still winds down previously firing
// thrusters with StoppedFiring transitions.
//
// A solver failure is a programming-invariant violation, not a runtime
// condition: no force is applied for the body that tick, the failure is
// logged, and the error is returned. The body simply stops firing rather
// than taking down the simulation.
func (c *Controller) Update(ctx context.Context, body Body, layout *thruster.Layout, state *State) ([]event.Transition, error) {
	if state.DesiredForce.IsZero() && state.DesiredTorque == 0 {
		return c.windDown(state), nil
	}

	c.ensureResolved(layout, state)

	com := body.CenterOfMass()
	if state.lastSeenCoM.DistanceSquared(com) > c.config.CoMDriftThresholdSq {
		state.lastSeenCoM = com
		state.invalidateCache()
	}

	activations, err := c.getOrCompute(ctx, state, com)
	if err != nil {
		c.logger.Error(ctx, "thruster allocation failed, body stops firing", err,
			"thrusters", len(state.resolved),
			"desired_force_x", state.DesiredForce.X,
			"desired_force_y", state.DesiredForce.Y,
			"desired_torque", state.DesiredTorque,
		)
		return c.windDown(state), err
	}
	if len(activations) != len(state.resolved) {
		err := fmt.Errorf("stale activation vector: %d activations for %d thrusters",
			len(activations), len(state.resolved))
		state.invalidateGeometry()
		c.logger.Error(ctx, "firing cache consistency violation", err)
		return c.windDown(state), err
	}

	worldTransform := body.WorldTransform()
	newFiring := make(map[thruster.MountID]float64, len(state.currentlyFiring))
	var transitions []event.Transition

	for i, th := range state.resolved {
		activation := activations[i]
		if activation <= 0 {
			continue
		}
		point := worldTransform.Apply(th.Position)
		direction := worldTransform.ApplyDirection(th.Direction)
		body.ApplyForce(point, direction, th.MaxThrust*activation*c.config.ThrustScale)

		newFiring[th.ID] = activation
		if _, wasFiring := state.currentlyFiring[th.ID]; !wasFiring {
			transitions = append(transitions, event.Transition{
				Kind:       event.StartedFiring,
				Thruster:   th.ID,
				Activation: activation,
			})
		}
	}

	transitions = append(transitions, stopsSince(state.currentlyFiring, newFiring)...)
	state.currentlyFiring = newFiring
	return transitions, nil
}

// EstimateAcceleration predicts the linear and angular acceleration the
// body's CURRENT desire would produce, using the same cache the controller
// fires from, without applying anything. Returns ErrNoGeometry when the
// layout has never been resolved for this state; estimation deliberately
// does not resolve geometry itself.
func (c *Controller) EstimateAcceleration(ctx context.Context, body Body, state *State, engineScale float64) (physics.Vector2D, float64, error) {
	if !state.hasResolved {
		return physics.Vector2D{}, 0, ErrNoGeometry
	}

	com := body.CenterOfMass()
	if state.lastSeenCoM.DistanceSquared(com) > c.config.CoMDriftThresholdSq {
		state.lastSeenCoM = com
		state.invalidateCache()
	}

	activations, err := c.getOrCompute(ctx, state, com)
	if err != nil {
		return physics.Vector2D{}, 0, err
	}

	linear, angular := allocator.Estimate(
		body.InverseMass(),
		body.InverseSqrtInertia(),
		engineScale,
		com,
		state.resolved,
		activations,
	)
	return linear, angular, nil
}

// windDown emits StoppedFiring for every thruster active last tick and
// clears the firing set.
func (c *Controller) windDown(state *State) []event.Transition {
	if len(state.currentlyFiring) == 0 {
		return nil
	}
	transitions := stopsSince(state.currentlyFiring, nil)
	state.currentlyFiring = make(map[thruster.MountID]float64)
	return transitions
}

// stopsSince returns StoppedFiring transitions for thrusters present in
// previous but not in current, in stable MountID order.
func stopsSince(previous, current map[thruster.MountID]float64) []event.Transition {
	var stopped []thruster.MountID
	for id := range previous {
		if _, still := current[id]; !still {
			stopped = append(stopped, id)
		}
	}
	sort.Slice(stopped, func(i, j int) bool {
		if stopped[i].Owner != stopped[j].Owner {
			return stopped[i].Owner < stopped[j].Owner
		}
		return stopped[i].Index < stopped[j].Index
	})
	transitions := make([]event.Transition, 0, len(stopped))
	for _, id := range stopped {
		transitions = append(transitions, event.Transition{
			Kind:     event.StoppedFiring,
			Thruster: id,
		})
	}
	return transitions
}

// ensureResolved re-resolves geometry when the layout version moved past
// the one recorded at last resolution. Resolution always invalidates the
// whole cache; activation vectors never survive a topology change.
func (c *Controller) ensureResolved(layout *thruster.Layout, state *State) {
	if state.hasResolved && state.resolvedVersion == layout.Version() {
		return
	}
	state.invalidateGeometry()
	state.resolved = thruster.Resolve(layout)
	state.resolvedVersion = layout.Version()
	state.hasResolved = true
}

// getOrCompute returns the cached activation vector for the current desire
// bucket, solving on miss. The solve runs behind a per-body circuit breaker
// so a body with a broken formulation stops burning a full LP solve every
// tick while still being diagnosable.
func (c *Controller) getOrCompute(ctx context.Context, state *State, com physics.Vector2D) ([]float64, error) {
	key := c.quantKey(state.DesiredForce, state.DesiredTorque)
	if cached, ok := state.firingCache[key]; ok {
		return cached, nil
	}

	if state.breaker == nil {
		state.breaker = c.newBreaker(ctx)
	}
	result, err := state.breaker.Execute(func() (interface{}, error) {
		return allocator.Solve(state.resolved, com, state.DesiredForce, state.DesiredTorque, c.config.Weights())
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("allocation suspended: %w", err)
		}
		return nil, err
	}

	activations := result.([]float64)
	state.firingCache[key] = activations
	return activations, nil
}

// quantKey truncates the desire into its cache bucket
func (c *Controller) quantKey(force physics.Vector2D, torque float64) QuantKey {
	return QuantKey{
		ForceX: int32(force.X / c.config.ForceCoarseness),
		ForceY: int32(force.Y / c.config.ForceCoarseness),
		Torque: int32(torque / c.config.TorqueCoarseness),
	}
}

func (c *Controller) newBreaker(ctx context.Context) *gobreaker.CircuitBreaker {
	maxFails := c.config.BreakerMaxConsecutiveFails
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "thrust-allocator",
		Timeout: c.config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn(ctx, "allocation circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}
