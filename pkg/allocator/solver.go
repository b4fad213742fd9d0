// pkg/allocator/solver.go

// Package allocator turns a desired net force and torque into per-thruster
// activation fractions by solving a small linear program, and predicts the
// accelerations an activation vector would produce.
package allocator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/opd-ai/go-thrustalloc/pkg/physics"
	"github.com/opd-ai/go-thrustalloc/pkg/thruster"
)

// roundFactor fixes the precision of cached activations. The simplex
// output is not bit-stable across near-identical inputs; without rounding
// the firing cache never hits and firing states flicker.
const roundFactor = 100.0

// Weights tunes the allocation objective. The error terms dominate at unit
// weight; the fuel term only breaks ties between force/torque-equivalent
// solutions.
type Weights struct {
	// Fuel is the per-activation objective weight preferring
	// minimal-thrust solutions.
	Fuel float64
	// TorqueFactor scales torque residuals relative to force residuals.
	// It multiplies total available thrust so the two stay commensurate
	// regardless of layout size.
	TorqueFactor float64
	// Force is the force residual weight.
	Force float64
}

// DefaultWeights returns the tuning the allocator ships with
func DefaultWeights() Weights {
	return Weights{
		Fuel:         0.0001,
		TorqueFactor: 10.0,
		Force:        1.0,
	}
}

// InfeasibleError reports a numeric solve failure. The program is feasible
// by construction (every activation's box bounds admit the zero solution),
// so this surfaces a formulation bug such as non-finite geometry, never an
// expected runtime condition.
type InfeasibleError struct {
	Thrusters int
	Err       error
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("allocation LP failed for %d thrusters: %v", e.Thrusters, e.Err)
}

func (e *InfeasibleError) Unwrap() error {
	return e.Err
}

// Solve computes an activation fraction in [0,1] per resolved thruster so
// that the combined thrust best matches the request. desiredForce is a
// fraction of total available thrust per axis, in roughly [-1,1];
// desiredTorque is a fraction of achievable torque in the requested spin
// direction, in roughly [-1,1]. Activations are rounded to two decimals
// before being returned so identical requests cache identically.
//
// The result is index-aligned with thrusters. An empty thruster list yields
// an empty vector.
func Solve(
	thrusters []thruster.Resolved,
	centerOfMass physics.Vector2D,
	desiredForce physics.Vector2D,
	desiredTorque float64,
	weights Weights,
) ([]float64, error) {
	n := len(thrusters)
	if n == 0 {
		return []float64{}, nil
	}
	if !desiredForce.IsFinite() || math.IsNaN(desiredTorque) || math.IsInf(desiredTorque, 0) {
		return nil, &InfeasibleError{Thrusters: n, Err: fmt.Errorf("non-finite desire (%v, %v)", desiredForce, desiredTorque)}
	}
	if !centerOfMass.IsFinite() {
		return nil, &InfeasibleError{Thrusters: n, Err: fmt.Errorf("non-finite center of mass %v", centerOfMass)}
	}

	totalThrust := 0.0
	for _, th := range thrusters {
		totalThrust += th.MaxThrust
	}

	// Per-thruster torque and force contributions at full activation.
	// Torque is pre-scaled by the torque weight so torque and force
	// residuals share one objective.
	torqueWeight := totalThrust * weights.TorqueFactor
	torques := make([]float64, n)
	forces := make([]physics.Vector2D, n)
	totalPositiveTorque := 0.0
	totalNegativeTorque := 0.0
	for i, th := range thrusters {
		arm := th.Position.Sub(centerOfMass)
		thrust := th.Direction.Normalize().Scale(th.MaxThrust)
		torques[i] = arm.Cross(thrust) * torqueWeight
		forces[i] = thrust.Scale(weights.Force)
		if torques[i] > 0 {
			totalPositiveTorque += torques[i]
		} else {
			totalNegativeTorque += math.Abs(torques[i])
		}
	}

	// Most layouts spin one way more readily than the other, so the torque
	// target is normalized against the achievable torque in the requested
	// direction rather than a symmetric total.
	targetTorque := desiredTorque * totalNegativeTorque
	if desiredTorque > 0 {
		targetTorque = desiredTorque * totalPositiveTorque
	}
	targetForce := desiredForce.Scale(totalThrust)

	activations, err := solveLP(torques, forces, targetTorque, targetForce, weights.Fuel)
	if err != nil {
		return nil, &InfeasibleError{Thrusters: n, Err: err}
	}

	for i, a := range activations {
		a = math.Round(a*roundFactor) / roundFactor
		if a < 0 {
			a = 0
		} else if a > 1 {
			a = 1
		}
		activations[i] = a
	}
	return activations, nil
}

// solveLP minimizes
//
//	fuel·Σaᵢ + u + v + w
//
// over activations aᵢ ∈ [0,1] and error variables u, v, w ≥ 0, subject to
// |Σtᵢaᵢ − T| ≤ u, |Σfxᵢaᵢ − Dx| ≤ v, |Σfyᵢaᵢ − Dy| ≤ w. Each absolute
// residual bound becomes the usual pair of ≤ constraints, and the whole
// program is brought to standard equality form with one slack per row for
// gonum's simplex.
func solveLP(torques []float64, forces []physics.Vector2D, targetTorque float64, targetForce physics.Vector2D, fuelWeight float64) ([]float64, error) {
	n := len(torques)
	rows := 6 + n // residual constraint pairs + activation upper bounds
	cols := n + 3 + rows

	c := make([]float64, cols)
	for i := 0; i < n; i++ {
		c[i] = fuelWeight
	}
	c[n] = 1   // u: torque error
	c[n+1] = 1 // v: force-x error
	c[n+2] = 1 // w: force-y error

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)

	for i := 0; i < n; i++ {
		a.Set(0, i, torques[i])
		a.Set(1, i, -torques[i])
		a.Set(2, i, forces[i].X)
		a.Set(3, i, -forces[i].X)
		a.Set(4, i, forces[i].Y)
		a.Set(5, i, -forces[i].Y)
		a.Set(6+i, i, 1)
		b[6+i] = 1
	}
	a.Set(0, n, -1)
	a.Set(1, n, -1)
	a.Set(2, n+1, -1)
	a.Set(3, n+1, -1)
	a.Set(4, n+2, -1)
	a.Set(5, n+2, -1)
	b[0] = targetTorque
	b[1] = -targetTorque
	b[2] = targetForce.X
	b[3] = -targetForce.X
	b[4] = targetForce.Y
	b[5] = -targetForce.Y

	for r := 0; r < rows; r++ {
		a.Set(r, n+3+r, 1)
	}

	_, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return nil, err
	}
	return x[:n], nil
}
