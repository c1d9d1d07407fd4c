package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/objrom/pkg/math"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		in   math.Vec3
		want Normal16
	}{
		{"+X", math.Vec3{X: 3}, Normal16{NormalScale, 0, 0}},
		{"-Z", math.Vec3{Z: -0.25}, Normal16{0, 0, -NormalScale}},
		{"diagonal", math.Vec3{X: 1, Y: 1}, Normal16{5793, 5793, 0}},
		{"zero", math.Vec3{}, UnitZ},
		{"nan", math.Vec3{X: gomath.NaN()}, UnitZ},
		{"huge +X", math.Vec3{X: 1e200}, Normal16{NormalScale, 0, 0}},
		{"huge diagonal", math.Vec3{X: 1e200, Y: 1e200}, Normal16{5793, 5793, 0}},
		{"infinite", math.Vec3{Y: gomath.Inf(-1)}, UnitZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantize(tt.in); got != tt.want {
				t.Errorf("Quantize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// firstPass mirrors the single-rounding quantization Quantize must never do worse than.
func firstPass(v math.Vec3) Normal16 {
	return scaleRound(v.Normalize(), NormalScale)
}

func TestQuantize_Invariant(t *testing.T) {
	const target = int64(NormalScale) * int64(NormalScale)

	for i := 0; i < 2000; i++ {
		// Deterministic spread over the sphere.
		theta := float64(i) * 2.399963229728653
		z := 1 - 2*(float64(i)+0.5)/2000
		r := gomath.Sqrt(1 - z*z)
		v := math.Vec3{X: r * gomath.Cos(theta), Y: r * gomath.Sin(theta), Z: z}.Scale(float64(i%7) + 0.3)

		q := Quantize(v)
		for _, c := range q.Components() {
			if c < -NormalScale || c > NormalScale {
				t.Fatalf("%v: component %d out of range", v, c)
			}
		}

		got := absInt64(q.LengthSq() - target)
		base := absInt64(firstPass(v).LengthSq() - target)
		if got > base {
			t.Fatalf("%v: error %d worse than single pass %d", v, got, base)
		}
		// Rounding three axes can be off by at most ~1.5 units of length.
		if gomath.Abs(gomath.Sqrt(float64(q.LengthSq()))-NormalScale) > 1.5 {
			t.Fatalf("%v: length %v too far from %d", v, gomath.Sqrt(float64(q.LengthSq())), NormalScale)
		}
		// Direction is preserved.
		dir := math.Vec3{X: float64(q.X), Y: float64(q.Y), Z: float64(q.Z)}.Normalize()
		if dir.Dot(v.Normalize()) < 0.9999 {
			t.Fatalf("%v: direction drifted to %v", v, dir)
		}
	}
}

func TestQuantizeAll(t *testing.T) {
	got := QuantizeAll([]math.Vec3{{Y: 2}, {}})
	if len(got) != 2 || got[0] != (Normal16{0, NormalScale, 0}) || got[1] != UnitZ {
		t.Errorf("QuantizeAll() = %v", got)
	}
}
