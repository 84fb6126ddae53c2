package geom

import "math"

// Vector3 is a point or direction in ranch space. Y is up; the walkable
// plane is XZ.
// Value type, passed by value.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Vec creates a Vector3.
func Vec(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product.
func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the euclidean length.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// DistanceTo returns the euclidean distance to o.
func (v Vector3) DistanceTo(o Vector3) float64 {
	return math.Sqrt(DistanceToSquared(v, o))
}

// Lerp interpolates from v to o; t=0 gives v, t=1 gives o.
func (v Vector3) Lerp(o Vector3, t float64) Vector3 {
	return Vector3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// Heading returns the yaw angle (radians) of the direction from v to o on
// the XZ plane. Zero faces +Z.
func (v Vector3) Heading(o Vector3) float64 {
	return math.Atan2(o.X-v.X, o.Z-v.Z)
}
