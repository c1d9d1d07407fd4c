// Package mesh turns parsed OBJ faces into the triangle data a fixed-point engine
// consumes: centered positions, fan-triangulated faces with material groups,
// clockwise winding and synthesized normals.
package mesh

import (
	"slices"

	"github.com/Faultbox/objrom/pkg/formats"
	"github.com/Faultbox/objrom/pkg/math"
)

// WindingPolicy selects how triangle order is normalized.
type WindingPolicy struct {
	Normalize bool // Emit every triangle clockwise around its reference direction
	Invert    bool // Flip the outcome of the rule above (or every triangle when Normalize is off)
}

// Options controls Process.
type Options struct {
	Center  bool
	Winding WindingPolicy
}

// ReferenceKind tells where a triangle's reference direction came from.
type ReferenceKind uint8

const (
	ReferenceGeometric ReferenceKind = iota // Authored edge cross product
	ReferenceExplicit                       // Sum of the three OBJ vertex normals
)

// String returns a human-readable reference kind.
func (k ReferenceKind) String() string {
	if k == ReferenceExplicit {
		return "Explicit"
	}
	return "Geometric"
}

// Triangle is one fan triangle in final emitted corner order.
type Triangle struct {
	Corners    [3]formats.IndexTriple
	Material   int // Index into Mesh.Materials
	Reference  ReferenceKind
	Reversed   bool // Corners 1 and 2 were swapped relative to the authored face
	Degenerate bool // Zero area
}

// Indices returns the three vertex indices.
func (t Triangle) Indices() [3]int {
	return [3]int{t.Corners[0].V, t.Corners[1].V, t.Corners[2].V}
}

// Stats summarizes a Process run for diagnostics.
type Stats struct {
	Triangles          int
	Reversed           int
	ExplicitReference  int
	GeometricReference int
	Degenerate         int
	DroppedFaces       int
}

// Mesh is the processed geometry of one OBJ file.
type Mesh struct {
	Positions []math.Vec3        // Vertex positions, centered when requested
	Normals   []math.Vec3        // OBJ normals, referenced by corner VN
	Triangles []Triangle         // Final emitted triangles
	Materials []formats.Material // Material tags in first-seen order
	Center    math.Vec3          // Offset subtracted from every position
	Stats     Stats
}

// Groups returns the material index of every triangle.
func (m *Mesh) Groups() []int {
	groups := make([]int, len(m.Triangles))
	for i, t := range m.Triangles {
		groups[i] = t.Material
	}
	return groups
}

// Indices returns the vertex index triples of every triangle.
func (m *Mesh) Indices() [][3]int {
	out := make([][3]int, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = t.Indices()
	}
	return out
}

// Corners returns the corner references of every triangle in emitted order.
func (m *Mesh) Corners() [][3]formats.IndexTriple {
	out := make([][3]formats.IndexTriple, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = t.Corners
	}
	return out
}

// Empty reports whether there is nothing to emit.
func (m *Mesh) Empty() bool {
	return len(m.Positions) == 0 || len(m.Triangles) == 0
}

// Process centers, triangulates and orients the faces of obj. The OBJ is not modified.
func Process(obj *formats.OBJ, opts Options) *Mesh {
	m := &Mesh{
		Positions: slices.Clone(obj.Vertices),
		Normals:   obj.Normals,
	}

	if opts.Center && len(m.Positions) > 0 {
		m.Center = math.Mean(m.Positions)
		for i := range m.Positions {
			m.Positions[i] = m.Positions[i].Sub(m.Center)
		}
	}

	materialIndex := make(map[formats.Material]int)
	for _, face := range obj.Faces {
		if len(face.Corners) < 3 || !m.validCorners(face.Corners, len(obj.TexCoords)) {
			m.Stats.DroppedFaces++
			continue
		}

		mat, ok := materialIndex[face.Material]
		if !ok {
			mat = len(m.Materials)
			materialIndex[face.Material] = mat
			m.Materials = append(m.Materials, face.Material)
		}

		for _, corners := range Triangulate(face.Corners) {
			tri := m.orient(corners, opts.Winding)
			tri.Material = mat
			m.Triangles = append(m.Triangles, tri)
		}
	}

	m.Stats.Triangles = len(m.Triangles)
	return m
}

// Triangulate fan-splits a polygon from its first corner: (c0, ci, ci+1) for i in [1, n-2].
func Triangulate(corners []formats.IndexTriple) [][3]formats.IndexTriple {
	if len(corners) < 3 {
		return nil
	}
	tris := make([][3]formats.IndexTriple, 0, len(corners)-2)
	for i := 1; i < len(corners)-1; i++ {
		tris = append(tris, [3]formats.IndexTriple{corners[0], corners[i], corners[i+1]})
	}
	return tris
}

// validCorners checks every reference against the arrays it points into.
func (m *Mesh) validCorners(corners []formats.IndexTriple, texCoordCount int) bool {
	for _, c := range corners {
		if c.V < 0 || c.V >= len(m.Positions) {
			return false
		}
		if c.HasNormal() && (c.VN < 0 || c.VN >= len(m.Normals)) {
			return false
		}
		if c.HasTexCoord() && (c.VT < 0 || c.VT >= texCoordCount) {
			return false
		}
	}
	return true
}
