package geometry

import "math"

// A point or direction in 3D space
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

// Unit vector pointing up, used as the fallback normal of degenerate faces
var Up = Vector3{X: 0, Y: 0, Z: 1}

func NewVector3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vector3) Scale(f float64) Vector3 {
	return Vector3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Returns the vector scaled to unit length and false when the vector has zero length
func (v Vector3) Normalize() (Vector3, bool) {
	n := v.Norm()
	if n == 0 {
		return v, false
	}
	return v.Scale(1 / n), true
}

func (v Vector3) AsArray() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func (v Vector3) AsFloat32() [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
