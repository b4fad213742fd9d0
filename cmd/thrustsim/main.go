// cmd/thrustsim/main.go
package main

import (
	"context"
	"flag"
	"math"
	"os"

	"github.com/opd-ai/go-thrustalloc/pkg/config"
	"github.com/opd-ai/go-thrustalloc/pkg/control"
	"github.com/opd-ai/go-thrustalloc/pkg/event"
	"github.com/opd-ai/go-thrustalloc/pkg/logging"
	"github.com/opd-ai/go-thrustalloc/pkg/physics"
	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

// thrustsim flies a small ship through a scripted maneuver sequence on the
// reference rigid body and logs every firing transition, to show the
// allocation core end to end without any rendering.
func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), "")

	configPath := flag.String("config", "", "Path to configuration file (optional)")
	ticks := flag.Int("ticks", 240, "Number of 60Hz simulation ticks to run")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
	} else {
		cfg, err = config.LoadConfigFromEnv()
	}
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err)
		os.Exit(1)
	}

	body := physics.NewRigidBody(10, 400)
	layout := shipLayout()

	controller := control.NewController(cfg, logger)
	fleet := control.NewFleet(controller)
	ship := fleet.Add(1, body, layout)

	bus := event.NewBus()
	bus.Subscribe(event.StartedFiring, func(t event.Transition) {
		logger.Info(ctx, "thruster started firing",
			"owner", t.Thruster.Owner,
			"mount", t.Thruster.Index,
			"activation", t.Activation,
		)
	})
	bus.Subscribe(event.StoppedFiring, func(t event.Transition) {
		logger.Info(ctx, "thruster stopped firing",
			"owner", t.Thruster.Owner,
			"mount", t.Thruster.Index,
		)
	})

	const deltaTime = 1.0 / 60.0
	for tick := 0; tick < *ticks; tick++ {
		ship.State.SetDesire(maneuver(tick))

		transitions, err := fleet.UpdateAll(ctx)
		if err != nil {
			logger.Error(ctx, "fleet update failed", err)
			os.Exit(1)
		}
		for _, ts := range transitions {
			bus.PublishAll(ts)
		}
		body.Integrate(deltaTime)

		if tick%60 == 0 {
			linear, angular, estErr := controller.EstimateAcceleration(ctx, body, ship.State, 1.0)
			if estErr == nil {
				logger.Info(ctx, "ship state",
					"tick", tick,
					"pos_x", body.Transform.Position.X,
					"pos_y", body.Transform.Position.Y,
					"heading", body.Transform.Rotation,
					"est_accel_x", linear.X,
					"est_accel_y", linear.Y,
					"est_angular_accel", angular,
				)
			}
		}
	}

	logger.Info(ctx, "simulation complete",
		"final_x", body.Transform.Position.X,
		"final_y", body.Transform.Position.Y,
		"final_heading", body.Transform.Rotation,
	)
}

// shipLayout mounts four main thrusters on the hull and a pair of RCS
// thrusters on an attached nose section.
func shipLayout() *thruster.Layout {
	layout := thruster.NewLayout()
	layout.AddOwner(1, physics.Identity(),
		thruster.Mount{LocalPosition: physics.Vector2D{X: -30}, ThrustDirection: physics.Vector2D{Y: 1}, MaxThrust: 1},
		thruster.Mount{LocalPosition: physics.Vector2D{X: 30}, ThrustDirection: physics.Vector2D{Y: 1}, MaxThrust: 1},
		thruster.Mount{LocalPosition: physics.Vector2D{X: -30}, ThrustDirection: physics.Vector2D{Y: -1}, MaxThrust: 0.5},
		thruster.Mount{LocalPosition: physics.Vector2D{X: 30}, ThrustDirection: physics.Vector2D{Y: -1}, MaxThrust: 0.5},
	)
	layout.AddOwner(2, physics.Transform{Position: physics.Vector2D{Y: 60}},
		thruster.Mount{ThrustDirection: physics.Vector2D{X: 1}, MaxThrust: 0.25},
		thruster.Mount{ThrustDirection: physics.Vector2D{X: -1}, MaxThrust: 0.25},
	)
	return layout
}

// maneuver scripts the desired force/torque over time: burn forward, coast,
// rotate, then brake.
func maneuver(tick int) (physics.Vector2D, float64) {
	switch {
	case tick < 60:
		return physics.Vector2D{Y: 1}, 0
	case tick < 90:
		return physics.Vector2D{}, 0
	case tick < 150:
		return physics.Vector2D{}, math.Copysign(0.5, float64(120-tick))
	default:
		return physics.Vector2D{Y: -0.75}, 0
	}
}
