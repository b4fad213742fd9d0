// pkg/allocator/estimate.go
package allocator

import (
	"github.com/opd-ai/go-thrustalloc/pkg/physics"
	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

// Estimate predicts the linear and angular acceleration an activation
// vector would produce, without touching any physics state. Callers use it
// for prediction and telemetry; the controller never needs it to fire.
//
// The angular term multiplies the torque by the inverse square root of the
// moment of inertia twice. That is the contract the host exposes the
// inertia in, not a shortcut for 1/I.
func Estimate(
	inverseMass float64,
	inverseSqrtInertia float64,
	engineScale float64,
	centerOfMass physics.Vector2D,
	thrusters []thruster.Resolved,
	activations []float64,
) (linear physics.Vector2D, angular float64) {
	count := len(activations)
	if len(thrusters) < count {
		count = len(thrusters)
	}
	for i := 0; i < count; i++ {
		if activations[i] <= 0 {
			continue
		}
		arm := thrusters[i].Position.Sub(centerOfMass)
		thrust := thrusters[i].Direction.Scale(thrusters[i].MaxThrust * activations[i] * engineScale)
		torque := arm.Cross(thrust)

		angular += inverseSqrtInertia * (inverseSqrtInertia * torque)
		linear = linear.Add(thrust.Scale(inverseMass))
	}
	return linear, angular
}
