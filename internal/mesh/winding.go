package mesh

import (
	"github.com/Faultbox/objrom/pkg/formats"
	"github.com/Faultbox/objrom/pkg/math"
)

// The engine culls counter-clockwise triangles, while OBJ authors faces
// counter-clockwise around their outward normal. A triangle (a, b, c) is emitted
// so that it runs clockwise when viewed from the side its reference direction
// points to, i.e. its front normal (c-a)x(b-a) agrees with the reference.

// frontNormal returns (c-a)x(b-a), the normal of the side from which a, b, c run clockwise.
func frontNormal(a, b, c math.Vec3) math.Vec3 {
	return c.Sub(a).Cross(b.Sub(a))
}

// FrontNormal returns the unnormalized front normal of t in its emitted order.
func (m *Mesh) FrontNormal(t Triangle) math.Vec3 {
	return frontNormal(
		m.Positions[t.Corners[0].V],
		m.Positions[t.Corners[1].V],
		m.Positions[t.Corners[2].V],
	)
}

// explicitNormal sums the three corner normals. ok is false unless every corner has one.
func (m *Mesh) explicitNormal(corners [3]formats.IndexTriple) (sum math.Vec3, ok bool) {
	for _, c := range corners {
		if !c.HasNormal() {
			return math.Vec3{}, false
		}
		sum = sum.Add(m.Normals[c.VN])
	}
	return sum, true
}

// orient builds a triangle from authored corners and applies the winding policy.
func (m *Mesh) orient(corners [3]formats.IndexTriple, policy WindingPolicy) Triangle {
	a := m.Positions[corners[0].V]
	b := m.Positions[corners[1].V]
	c := m.Positions[corners[2].V]

	authored := b.Sub(a).Cross(c.Sub(a))
	front := frontNormal(a, b, c)

	tri := Triangle{Corners: corners, Degenerate: authored.IsZero()}

	reference := authored
	if sum, ok := m.explicitNormal(corners); ok {
		tri.Reference = ReferenceExplicit
		reference = sum
		m.Stats.ExplicitReference++
	} else {
		m.Stats.GeometricReference++
	}
	if tri.Degenerate {
		m.Stats.Degenerate++
	}

	reverse := false
	if policy.Normalize && !tri.Degenerate && !reference.IsZero() {
		reverse = front.Normalize().Dot(reference.Normalize()) < 0
	}
	if policy.Invert {
		reverse = !reverse
	}

	if reverse {
		tri.Corners[1], tri.Corners[2] = tri.Corners[2], tri.Corners[1]
		tri.Reversed = true
		m.Stats.Reversed++
	}
	return tri
}
