package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the 2D vector used across the collision core. It is a value type;
// methods such as Add, Sub, Mul, Dot, Len and Normalize come from mgl64.
type Vec2 = mgl64.Vec2

// V builds a Vec2 from components.
func V(x, y float64) Vec2 { return Vec2{x, y} }

// Hadamard multiplies two vectors component-wise.
func Hadamard(a, b Vec2) Vec2 { return Vec2{a[0] * b[0], a[1] * b[1]} }

// SafeNormalize returns v scaled to unit length, or the zero vector when v has no length.
func SafeNormalize(v Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v[0] / l, v[1] / l}
}

// Perp returns the outward normal direction of an edge running along d in a
// y-down frame with clockwise winding.
func Perp(d Vec2) Vec2 { return Vec2{d[1], -d[0]} }

// DistanceV computes distance between two vectors.
func DistanceV(a, b Vec2) float64 { return math.Hypot(b[0]-a[0], b[1]-a[1]) }
