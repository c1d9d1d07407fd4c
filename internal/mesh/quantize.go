package mesh

import (
	gomath "math"

	"github.com/Faultbox/objrom/pkg/math"
)

// NormalScale is the integer length of a unit normal (VERTEX16_UNIT on the target).
const NormalScale = 8192

// Normal16 is a quantized normal whose length is NormalScale, or as close as rounding allows.
type Normal16 struct {
	X, Y, Z int16
}

// UnitZ is the quantized +Z normal, used for degenerate input.
var UnitZ = Normal16{0, 0, NormalScale}

// LengthSq returns the squared integer length.
func (n Normal16) LengthSq() int64 {
	x, y, z := int64(n.X), int64(n.Y), int64(n.Z)
	return x*x + y*y + z*z
}

// IsZero reports whether all components are zero.
func (n Normal16) IsZero() bool {
	return n == Normal16{}
}

// Components returns the three components in order.
func (n Normal16) Components() [3]int16 {
	return [3]int16{n.X, n.Y, n.Z}
}

// Quantize scales the direction of v to NormalScale and rounds it to integers.
// If the rounded vector's squared length misses NormalScale² a second pass rescales
// by NormalScale/length and re-rounds; whichever result is closer wins.
// Zero-length input yields UnitZ.
func Quantize(v math.Vec3) Normal16 {
	unit := v.Normalize()
	if unit.IsZero() {
		return UnitZ
	}

	first := scaleRound(unit, NormalScale)
	if first.IsZero() {
		return UnitZ
	}

	const target = int64(NormalScale) * int64(NormalScale)
	firstErr := absInt64(first.LengthSq() - target)
	if firstErr == 0 {
		return first
	}

	actual := gomath.Sqrt(float64(first.LengthSq()))
	rescaled := math.Vec3{X: float64(first.X), Y: float64(first.Y), Z: float64(first.Z)}
	second := scaleRound(rescaled, NormalScale/actual)
	if second.IsZero() {
		return first
	}
	if absInt64(second.LengthSq()-target) < firstErr {
		return second
	}
	return first
}

func scaleRound(v math.Vec3, s float64) Normal16 {
	return Normal16{
		X: clampComponent(v.X * s),
		Y: clampComponent(v.Y * s),
		Z: clampComponent(v.Z * s),
	}
}

func clampComponent(f float64) int16 {
	r := gomath.Round(f)
	if r > NormalScale {
		r = NormalScale
	}
	if r < -NormalScale {
		r = -NormalScale
	}
	return int16(r)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// QuantizeAll quantizes a slice of normals.
func QuantizeAll(vs []math.Vec3) []Normal16 {
	out := make([]Normal16, len(vs))
	for i, v := range vs {
		out[i] = Quantize(v)
	}
	return out
}
