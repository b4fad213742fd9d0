// pkg/physics/transform_test.go
package physics

import (
	"math"
	"testing"
)

func TestTransform_Apply(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
		point     Vector2D
		expected  Vector2D
	}{
		{
			name:      "identity",
			transform: Identity(),
			point:     Vector2D{X: 3, Y: 4},
			expected:  Vector2D{X: 3, Y: 4},
		},
		{
			name:      "translation_only",
			transform: Transform{Position: Vector2D{X: 10, Y: -5}},
			point:     Vector2D{X: 1, Y: 1},
			expected:  Vector2D{X: 11, Y: -4},
		},
		{
			name:      "quarter_turn",
			transform: Transform{Rotation: math.Pi / 2},
			point:     Vector2D{X: 1, Y: 0},
			expected:  Vector2D{X: 0, Y: 1},
		},
		{
			name:      "rotate_then_translate",
			transform: Transform{Position: Vector2D{X: 5, Y: 0}, Rotation: math.Pi},
			point:     Vector2D{X: 1, Y: 0},
			expected:  Vector2D{X: 4, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.transform.Apply(tt.point)
			if math.Abs(result.X-tt.expected.X) > 1e-12 || math.Abs(result.Y-tt.expected.Y) > 1e-12 {
				t.Errorf("Apply() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestTransform_ApplyDirection_IgnoresTranslation(t *testing.T) {
	transform := Transform{Position: Vector2D{X: 100, Y: 100}, Rotation: math.Pi / 2}
	result := transform.ApplyDirection(Vector2D{X: 1, Y: 0})
	if math.Abs(result.X) > 1e-12 || math.Abs(result.Y-1) > 1e-12 {
		t.Errorf("ApplyDirection() = %v, expected (0, 1)", result)
	}
}
