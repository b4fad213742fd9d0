// pkg/physics/rigidbody_test.go
package physics

import (
	"math"
	"testing"
)

func TestRigidBody_ApplyForceAndIntegrate(t *testing.T) {
	body := NewRigidBody(2, 8)

	// 1N up at the center of mass for one second: pure translation.
	body.ApplyForce(Vector2D{}, Vector2D{Y: 1}, 1)
	body.Integrate(1)

	if math.Abs(body.Velocity.Y-0.5) > 1e-12 {
		t.Errorf("Velocity.Y = %v, expected 0.5", body.Velocity.Y)
	}
	if body.AngularVelocity != 0 {
		t.Errorf("AngularVelocity = %v, expected 0", body.AngularVelocity)
	}
}

func TestRigidBody_OffCenterForceProducesTorque(t *testing.T) {
	body := NewRigidBody(1, 4)

	// 1N up at x=+2: torque +2, angular acceleration 0.5.
	body.ApplyForce(Vector2D{X: 2}, Vector2D{Y: 1}, 1)
	body.Integrate(1)

	if math.Abs(body.AngularVelocity-0.5) > 1e-12 {
		t.Errorf("AngularVelocity = %v, expected 0.5", body.AngularVelocity)
	}
}

func TestRigidBody_ForcesClearAfterIntegrate(t *testing.T) {
	body := NewRigidBody(1, 1)
	body.ApplyForce(Vector2D{}, Vector2D{X: 1}, 1)
	body.Integrate(1)
	velocityAfterFirst := body.Velocity

	body.Integrate(1)
	if body.Velocity != velocityAfterFirst {
		t.Errorf("velocity changed without new forces: %v -> %v", velocityAfterFirst, body.Velocity)
	}
}

func TestRigidBody_HostInterfaceValues(t *testing.T) {
	body := NewRigidBody(4, 25)
	if body.InverseMass() != 0.25 {
		t.Errorf("InverseMass() = %v, expected 0.25", body.InverseMass())
	}
	if math.Abs(body.InverseSqrtInertia()-0.2) > 1e-12 {
		t.Errorf("InverseSqrtInertia() = %v, expected 0.2", body.InverseSqrtInertia())
	}
}
