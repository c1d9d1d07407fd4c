// Package emit serializes converted mesh data into the namespaced C++ array layout
// consumed by the target engine.
package emit

import (
	"fmt"
	"io"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/objrom/internal/mesh"
	"github.com/Faultbox/objrom/internal/uvatlas"
	"github.com/Faultbox/objrom/pkg/encoding"
	"github.com/Faultbox/objrom/pkg/formats"
	"github.com/Faultbox/objrom/pkg/math"
)

const (
	indent = "    "

	// UnitMacro is printed in place of ±mesh.NormalScale.
	UnitMacro = "VERTEX16_UNIT"

	// DefaultVertexScale converts OBJ units to vertex16_t units.
	DefaultVertexScale = 128

	groupsPerLine = 16
)

// Block is everything emitted for one (file, profile) pair.
// Nil normal slices and a nil Atlas omit their sections.
type Block struct {
	Name          string
	Vertices      []math.Vec3
	VertexScale   float64
	Triangles     [][3]int
	Groups        []int
	Materials     []formats.Material
	VertexNormals []mesh.Normal16
	FaceNormals   []mesh.Normal16
	Atlas         *uvatlas.Atlas
	UseUnitMacro  bool
}

// String renders the block.
func String(b Block) string {
	var sb strings.Builder
	render(&sb, b)
	return sb.String()
}

// Write renders the block to w.
func Write(w io.Writer, b Block) error {
	_, err := io.WriteString(w, String(b))
	return err
}

func render(sb *strings.Builder, b Block) {
	scale := b.VertexScale
	if scale == 0 {
		scale = DefaultVertexScale
	}

	fmt.Fprintf(sb, "namespace %s\n{\n", encoding.Identifier(b.Name))
	line(sb, "static constexpr int16_t UpSize = 1;")
	line(sb, "static constexpr int16_t DownSize = 1;")
	sb.WriteByte('\n')

	// Vertices
	open(sb, "static constexpr vertex16_t Vertices[] PROGMEM")
	for _, v := range b.Vertices {
		x, y, z := scaled(v.X, scale), scaled(v.Y, scale), scaled(v.Z, scale)
		entry(sb, fmt.Sprintf("{%s, %s, %s},", upDown(x), upDown(y), upDown(z)))
	}
	closeArray(sb)
	line(sb, "constexpr auto VertexCount = sizeof(Vertices) / sizeof(vertex16_t);")
	sb.WriteByte('\n')

	// Triangles
	open(sb, "static constexpr triangle_face_t Triangles[] PROGMEM")
	for _, t := range b.Triangles {
		entry(sb, fmt.Sprintf("{ %d, %d, %d },", t[0], t[1], t[2]))
	}
	closeArray(sb)
	line(sb, "constexpr auto TriangleCount = sizeof(Triangles) / sizeof(triangle_face_t);")
	sb.WriteByte('\n')

	// Group (material index per triangle)
	if len(b.Materials) > 0 {
		line(sb, "// Materials: "+materialLegend(b.Materials))
	}
	open(sb, "static constexpr uint8_t Group[TriangleCount] PROGMEM")
	for i := 0; i < len(b.Groups); i += groupsPerLine {
		chunk := b.Groups[i:min(i+groupsPerLine, len(b.Groups))]
		parts := make([]string, len(chunk))
		for j, g := range chunk {
			parts[j] = strconv.Itoa(g)
		}
		entry(sb, strings.Join(parts, ", ")+",")
	}
	closeArray(sb)

	if b.VertexNormals != nil {
		sb.WriteByte('\n')
		normals(sb, "VertexNormals", "VertexNormalCount", b.VertexNormals, b.UseUnitMacro)
	}
	if b.FaceNormals != nil {
		sb.WriteByte('\n')
		normals(sb, "FaceNormals", "FaceNormalCount", b.FaceNormals, b.UseUnitMacro)
	}
	if b.Atlas != nil && len(b.Atlas.Levels) > 0 {
		sb.WriteByte('\n')
		uvs(sb, b.Atlas)
	}

	sb.WriteString("}\n")
}

func normals(sb *strings.Builder, array, count string, ns []mesh.Normal16, macro bool) {
	open(sb, fmt.Sprintf("static constexpr vertex16_t %s[] PROGMEM", array))
	for _, n := range ns {
		entry(sb, fmt.Sprintf("{%s, %s, %s},",
			component(n.X, macro), component(n.Y, macro), component(n.Z, macro)))
	}
	closeArray(sb)
	line(sb, fmt.Sprintf("constexpr auto %s = sizeof(%s) / sizeof(vertex16_t);", count, array))
}

func uvs(sb *strings.Builder, atlas *uvatlas.Atlas) {
	master := atlas.Master()
	line(sb, fmt.Sprintf("static constexpr uint16_t UvMasterWidth = %d;", master.Width))
	line(sb, fmt.Sprintf("static constexpr uint16_t UvMasterHeight = %d;", master.Height))
	line(sb, fmt.Sprintf("static constexpr uint16_t UvCount = %d;", atlas.Count()))

	for l, level := range atlas.Levels {
		sb.WriteByte('\n')
		open(sb, fmt.Sprintf("static constexpr coordinate_t %s[UvCount] PROGMEM", LevelName(level, l)))
		for i := 0; i < len(level.Texels); i += 3 {
			tri := level.Texels[i:min(i+3, len(level.Texels))]
			parts := make([]string, len(tri))
			for j, t := range tri {
				parts[j] = fmt.Sprintf("{%d, %d}", t.U, t.V)
			}
			entry(sb, strings.Join(parts, ", ")+",")
		}
		closeArray(sb)
	}

	if len(atlas.Levels) > 1 {
		sb.WriteByte('\n')
		line(sb, fmt.Sprintf("static constexpr uint8_t UvMipLevelCount = %d;", len(atlas.Levels)))
	}
}

// LevelName returns the array name of a UV level: UVs{W}x{H} for the master,
// UVs{w}x{h}_L{n} for mips.
func LevelName(level uvatlas.Level, index int) string {
	if index == 0 {
		return fmt.Sprintf("UVs%dx%d", level.Width, level.Height)
	}
	return fmt.Sprintf("UVs%dx%d_L%d", level.Width, level.Height, index)
}

func materialLegend(mats []formats.Material) string {
	parts := make([]string, len(mats))
	for i, m := range mats {
		parts[i] = fmt.Sprintf("%d = %s", i, m)
	}
	return strings.Join(parts, ", ")
}

func component(v int16, macro bool) string {
	if macro {
		switch v {
		case mesh.NormalScale:
			return UnitMacro
		case -mesh.NormalScale:
			return "-" + UnitMacro
		}
	}
	return strconv.Itoa(int(v))
}

func scaled(c, scale float64) int64 {
	return int64(gomath.Round(c * scale))
}

func upDown(v int64) string {
	return fmt.Sprintf("(UpSize*(int32_t)(%d))/DownSize", v)
}

func line(sb *strings.Builder, s string) {
	sb.WriteString(indent)
	sb.WriteString(s)
	sb.WriteByte('\n')
}

func entry(sb *strings.Builder, s string) {
	sb.WriteString(indent + indent)
	sb.WriteString(s)
	sb.WriteByte('\n')
}

func open(sb *strings.Builder, decl string) {
	line(sb, decl)
	line(sb, "{")
}

func closeArray(sb *strings.Builder) {
	line(sb, "};")
}
