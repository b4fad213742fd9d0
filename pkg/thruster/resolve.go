// pkg/thruster/resolve.go
package thruster

import (
	"math"

	"github.com/opd-ai/go-thrustalloc/pkg/physics"
)

// Resolved is one thruster flattened into the body frame: where it sits,
// the unit direction it pushes, its rated thrust, and its stable identity.
type Resolved struct {
	Position  physics.Vector2D
	Direction physics.Vector2D
	MaxThrust float64
	ID        MountID
}

// Resolve flattens a layout into the body-local thruster list. Owners are
// visited in ID order and each owner's mounts in declaration order, which
// fixes the index semantics of activation vectors for a given version.
// Mounts with a zero or non-finite thrust direction, or a non-finite or
// negative rated thrust, are dropped. Pure: no state is touched.
func Resolve(layout *Layout) []Resolved {
	var resolved []Resolved
	for _, owner := range layout.Owners() {
		for i, mount := range owner.Mounts {
			if !validMount(mount) {
				continue
			}
			resolved = append(resolved, Resolved{
				Position:  owner.Transform.Apply(mount.LocalPosition),
				Direction: owner.Transform.ApplyDirection(mount.ThrustDirection).Normalize(),
				MaxThrust: mount.MaxThrust,
				ID:        MountID{Owner: owner.ID, Index: i},
			})
		}
	}
	return resolved
}

func validMount(m Mount) bool {
	if !m.ThrustDirection.IsFinite() || m.ThrustDirection.IsZero() {
		return false
	}
	if !m.LocalPosition.IsFinite() {
		return false
	}
	if math.IsNaN(m.MaxThrust) || math.IsInf(m.MaxThrust, 0) || m.MaxThrust < 0 {
		return false
	}
	return true
}
