package mesh

import "github.com/Faultbox/objrom/pkg/math"

// Up is the fallback direction for vertices without any normal information.
var Up = math.Vec3{Z: 1}

// VertexNormals returns one unit normal per position.
//
// Explicit OBJ normals referenced by triangle corners are summed per vertex. A vertex
// with no usable explicit sum takes the sum of the unit front normals of the triangles
// touching it; a vertex with neither points along +Z.
func (m *Mesh) VertexNormals() []math.Vec3 {
	n := len(m.Positions)
	explicit := make([]math.Vec3, n)
	geometric := make([]math.Vec3, n)

	for _, t := range m.Triangles {
		face := m.FrontNormal(t).Normalize()
		for _, c := range t.Corners {
			geometric[c.V] = geometric[c.V].Add(face)
			if c.HasNormal() {
				explicit[c.V] = explicit[c.V].Add(m.Normals[c.VN])
			}
		}
	}

	out := make([]math.Vec3, n)
	for i := range out {
		switch {
		case !explicit[i].IsZero():
			out[i] = explicit[i].Normalize()
		case !geometric[i].IsZero():
			out[i] = geometric[i].Normalize()
		default:
			out[i] = Up
		}
	}
	return out
}

// FaceNormals returns one unnormalized normal per triangle: the sum of its three OBJ
// normals when every corner has one, else its front normal in emitted order.
func (m *Mesh) FaceNormals() []math.Vec3 {
	out := make([]math.Vec3, len(m.Triangles))
	for i, t := range m.Triangles {
		if t.Reference == ReferenceExplicit {
			out[i], _ = m.explicitNormal(t.Corners)
			continue
		}
		out[i] = m.FrontNormal(t)
	}
	return out
}
