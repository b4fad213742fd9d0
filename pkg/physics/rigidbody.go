// pkg/physics/rigidbody.go
package physics

import "math"

// RigidBody is a minimal planar rigid body with semi-implicit Euler
// integration. It is the reference host for the allocation controller; a
// real physics engine can stand in for it behind the same methods.
type RigidBody struct {
	Transform       Transform
	Velocity        Vector2D
	AngularVelocity float64
	Mass            float64
	MomentOfInertia float64
	LocalCoM        Vector2D // center of mass in the body frame

	accumForce  Vector2D
	accumTorque float64
}

// NewRigidBody creates a body with the given mass and moment of inertia.
// Non-positive values are clamped to 1 to keep the integrator well-defined.
func NewRigidBody(mass, momentOfInertia float64) *RigidBody {
	if mass <= 0 {
		mass = 1
	}
	if momentOfInertia <= 0 {
		momentOfInertia = 1
	}
	return &RigidBody{
		Mass:            mass,
		MomentOfInertia: momentOfInertia,
	}
}

// InverseMass returns 1/mass
func (b *RigidBody) InverseMass() float64 {
	return 1 / b.Mass
}

// InverseSqrtInertia returns the inverse square root of the moment of
// inertia, the form the acceleration estimator consumes.
func (b *RigidBody) InverseSqrtInertia() float64 {
	return 1 / math.Sqrt(b.MomentOfInertia)
}

// CenterOfMass returns the body-frame center of mass
func (b *RigidBody) CenterOfMass() Vector2D {
	return b.LocalCoM
}

// WorldTransform returns the body-to-world transform
func (b *RigidBody) WorldTransform() Transform {
	return b.Transform
}

// ApplyForce accumulates a force of the given magnitude along a world-space
// direction at a world-space point. The torque contribution is taken about
// the current world-space center of mass.
func (b *RigidBody) ApplyForce(point, direction Vector2D, magnitude float64) {
	force := direction.Normalize().Scale(magnitude)
	arm := point.Sub(b.Transform.Apply(b.LocalCoM))
	b.accumForce = b.accumForce.Add(force)
	b.accumTorque += arm.Cross(force)
}

// Integrate advances the body by deltaTime seconds and clears accumulated
// forces. Velocity is updated before position.
func (b *RigidBody) Integrate(deltaTime float64) {
	b.Velocity = b.Velocity.Add(b.accumForce.Scale(deltaTime / b.Mass))
	b.AngularVelocity += b.accumTorque / b.MomentOfInertia * deltaTime

	b.Transform.Position = b.Transform.Position.Add(b.Velocity.Scale(deltaTime))
	b.Transform.Rotation += b.AngularVelocity * deltaTime

	b.accumForce = Vector2D{}
	b.accumTorque = 0
}
