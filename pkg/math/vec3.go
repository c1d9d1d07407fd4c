// Package math provides the float64 vector types used by mesh conversion.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// LengthSq returns the squared magnitude.
func (v Vec3) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude. Components whose squares overflow are rescaled by the
// largest one first.
func (v Vec3) Length() float64 {
	sq := v.LengthSq()
	if !math.IsInf(sq, 1) {
		return math.Sqrt(sq)
	}
	m := v.maxAbs()
	if math.IsInf(m, 0) {
		return m
	}
	return m * v.Scale(1/m).Length()
}

// Normalize returns a unit vector, or the zero vector when v has no usable length.
func (v Vec3) Normalize() Vec3 {
	if math.IsInf(v.LengthSq(), 1) {
		m := v.maxAbs()
		if math.IsInf(m, 0) {
			return Vec3{}
		}
		v = v.Scale(1 / m)
	}
	l := v.Length()
	if l < Epsilon || math.IsNaN(l) {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

func (v Vec3) maxAbs() float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}

// IsZero reports whether v is too short to define a direction.
func (v Vec3) IsZero() bool {
	return v.Length() < Epsilon
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float64 {
	return v.Sub(other).Length()
}

// XY returns the XY components as Vec2.
func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}

// Mean returns the arithmetic mean of points, or the zero vector for an empty set.
func Mean(points []Vec3) Vec3 {
	if len(points) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

// Epsilon is the length below which a vector is treated as degenerate.
const Epsilon = 1e-12
