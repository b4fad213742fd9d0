// pkg/physics/transform.go
package physics

// Transform is a rigid 2D transform: a rotation followed by a translation.
// It maps points and directions from a part's local frame into its parent
// frame, or from a body's frame into world space.
type Transform struct {
	Position Vector2D
	Rotation float64 // radians
}

// Identity returns the no-op transform
func Identity() Transform {
	return Transform{}
}

// Apply maps a local-frame point into the transform's target frame
func (t Transform) Apply(point Vector2D) Vector2D {
	return point.Rotate(t.Rotation).Add(t.Position)
}

// ApplyDirection maps a local-frame direction into the target frame.
// Directions rotate but do not translate.
func (t Transform) ApplyDirection(dir Vector2D) Vector2D {
	return dir.Rotate(t.Rotation)
}
