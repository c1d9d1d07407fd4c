// OBJ (Wavefront) text format parser.

package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/objrom/pkg/encoding"
	"github.com/Faultbox/objrom/pkg/math"
)

// OBJ format errors. They are recorded per line in OBJ.Issues, never returned by ParseOBJ.
var (
	ErrMalformedNumber    = errors.New("malformed numeric token")
	ErrMissingComponents  = errors.New("too few components")
	ErrMalformedFaceToken = errors.New("malformed face token")
	ErrZeroIndex          = errors.New("OBJ indices are 1-based, got 0")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrFaceTooSmall       = errors.New("face has fewer than 3 corners")
)

// NoIndex marks an absent texcoord or normal reference.
const NoIndex = -1

// maxLineLength bounds a single (joined) OBJ line.
const maxLineLength = 1 << 20

// TexCoord is a texture coordinate with one or more components (u[, v[, w]]).
type TexCoord []float64

// U returns the first component.
func (t TexCoord) U() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

// V returns the second component, or 0 for 1D coordinates.
func (t TexCoord) V() float64 {
	if len(t) < 2 {
		return 0
	}
	return t[1]
}

// IndexTriple references a vertex and optionally a texcoord and a normal.
// All indices are zero-based; VT and VN are NoIndex when absent.
type IndexTriple struct {
	V  int
	VT int
	VN int
}

// HasTexCoord reports whether the corner references a texcoord.
func (c IndexTriple) HasTexCoord() bool { return c.VT != NoIndex }

// HasNormal reports whether the corner references a normal.
func (c IndexTriple) HasNormal() bool { return c.VN != NoIndex }

// Material is the usemtl tag active for a face. The zero value is "no material".
type Material struct {
	Name    string
	Defined bool
}

// String returns the material name or "(none)".
func (m Material) String() string {
	if !m.Defined {
		return "(none)"
	}
	return m.Name
}

// Face is a polygon with at least three corners, in authored winding order.
type Face struct {
	Corners  []IndexTriple
	Material Material
	Line     int // Source line number (1-based)
}

// LineIssue describes a line or face that was skipped during parsing.
type LineIssue struct {
	Line   int
	Prefix string
	Err    error
}

// Error implements error.
func (i LineIssue) Error() string {
	return fmt.Sprintf("line %d (%s): %v", i.Line, i.Prefix, i.Err)
}

// Unwrap returns the underlying sentinel error.
func (i LineIssue) Unwrap() error {
	return i.Err
}

// OBJ represents a parsed OBJ file.
type OBJ struct {
	Vertices  []math.Vec3
	TexCoords []TexCoord
	Normals   []math.Vec3
	Faces     []Face
	Issues    []LineIssue // Skipped lines, in source order
}

// Summary returns a short "V=.. VT=.. N=.. F=.." description for logs.
func (o *OBJ) Summary() string {
	return fmt.Sprintf("V=%d VT=%d N=%d F=%d", len(o.Vertices), len(o.TexCoords), len(o.Normals), len(o.Faces))
}

// Materials returns the distinct material tags in first-seen face order.
func (o *OBJ) Materials() []Material {
	seen := make(map[Material]bool)
	var out []Material
	for _, f := range o.Faces {
		if !seen[f.Material] {
			seen[f.Material] = true
			out = append(out, f.Material)
		}
	}
	return out
}

// ParseOBJ parses OBJ text. Malformed lines and faces with unresolvable indices are
// skipped and recorded in Issues; only read failures are returned as errors.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var material Material

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNum := 0
	var pending strings.Builder
	pendingStart := 0

	for scanner.Scan() {
		lineNum++
		raw := strings.TrimRight(scanner.Text(), "\r")

		// Backslash continues the statement on the next line.
		if strings.HasSuffix(raw, "\\") {
			if pending.Len() == 0 {
				pendingStart = lineNum
			}
			pending.WriteString(strings.TrimSuffix(raw, "\\"))
			pending.WriteByte(' ')
			continue
		}

		line := raw
		start := lineNum
		if pending.Len() > 0 {
			pending.WriteString(raw)
			line = pending.String()
			start = pendingStart
			pending.Reset()
		}

		obj.parseLine(line, start, &material)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning OBJ line %d: %w", lineNum+1, err)
	}
	if pending.Len() > 0 {
		obj.parseLine(pending.String(), pendingStart, &material)
	}

	return obj, nil
}

// parseLine dispatches one logical line.
func (o *OBJ) parseLine(line string, lineNum int, material *Material) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	fields := strings.Fields(line)
	prefix := fields[0]
	args := fields[1:]

	switch prefix {
	case "v":
		v, err := parseVec3(args)
		if err != nil {
			o.addIssue(lineNum, prefix, err)
			return
		}
		o.Vertices = append(o.Vertices, v)

	case "vn":
		n, err := parseVec3(args)
		if err != nil {
			o.addIssue(lineNum, prefix, err)
			return
		}
		o.Normals = append(o.Normals, n)

	case "vt":
		tc, err := parseTexCoord(args)
		if err != nil {
			o.addIssue(lineNum, prefix, err)
			return
		}
		o.TexCoords = append(o.TexCoords, tc)

	case "usemtl":
		if len(args) == 0 {
			*material = Material{}
			return
		}
		*material = Material{Name: strings.Join(args, " "), Defined: true}

	case "f":
		corners, err := o.parseFace(args)
		if err != nil {
			o.addIssue(lineNum, prefix, err)
			return
		}
		o.Faces = append(o.Faces, Face{Corners: corners, Material: *material, Line: lineNum})
	}
}

func (o *OBJ) addIssue(line int, prefix string, err error) {
	o.Issues = append(o.Issues, LineIssue{Line: line, Prefix: prefix, Err: err})
}

// parseVec3 reads the first three numeric tokens; extra tokens (e.g. vertex colors or w)
// are ignored.
func parseVec3(args []string) (math.Vec3, error) {
	if len(args) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: need 3, got %d", ErrMissingComponents, len(args))
	}
	var c [3]float64
	for i := range c {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: %q", ErrMalformedNumber, args[i])
		}
		c[i] = f
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseTexCoord(args []string) (TexCoord, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: need at least 1", ErrMissingComponents)
	}
	tc := make(TexCoord, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, a)
		}
		tc[i] = f
	}
	return tc, nil
}

// parseFace resolves every corner token against the current array sizes.
func (o *OBJ) parseFace(args []string) ([]IndexTriple, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrFaceTooSmall, len(args))
	}

	corners := make([]IndexTriple, 0, len(args))
	for _, tok := range args {
		c, err := o.parseCorner(tok)
		if err != nil {
			return nil, fmt.Errorf("corner %q: %w", tok, err)
		}
		corners = append(corners, c)
	}
	return corners, nil
}

// parseCorner handles "v", "v/vt", "v/vt/vn" and "v//vn".
func (o *OBJ) parseCorner(tok string) (IndexTriple, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 || parts[0] == "" {
		return IndexTriple{}, ErrMalformedFaceToken
	}

	c := IndexTriple{VT: NoIndex, VN: NoIndex}

	var err error
	if c.V, err = ResolveIndex(parts[0], len(o.Vertices)); err != nil {
		return IndexTriple{}, fmt.Errorf("vertex: %w", err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.VT, err = ResolveIndex(parts[1], len(o.TexCoords)); err != nil {
			return IndexTriple{}, fmt.Errorf("texcoord: %w", err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.VN, err = ResolveIndex(parts[2], len(o.Normals)); err != nil {
			return IndexTriple{}, fmt.Errorf("normal: %w", err)
		}
	}
	return c, nil
}

// ResolveIndex converts a 1-based or negative (relative-from-end) OBJ index into a
// zero-based index into an array currently holding count elements.
func ResolveIndex(raw string, count int) (int, error) {
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
	}

	var resolved int
	switch {
	case idx > 0:
		resolved = idx - 1
	case idx < 0:
		resolved = count + idx
	default:
		return 0, ErrZeroIndex
	}

	if resolved < 0 || resolved >= count {
		return 0, fmt.Errorf("%w: %d resolves to %d with %d defined", ErrIndexOutOfRange, idx, resolved, count)
	}
	return resolved, nil
}

// LoadOBJ reads an OBJ file in the named source encoding ("" for UTF-8) and parses it.
func LoadOBJ(path string, sourceEncoding string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	text, err := encoding.ToUTF8(data, sourceEncoding)
	if err != nil {
		return nil, fmt.Errorf("decoding OBJ file: %w", err)
	}
	return ParseOBJ(text)
}
