// Package convert runs the conversion pipeline for one OBJ and one output profile.
package convert

import (
	"errors"
	"fmt"

	"github.com/Faultbox/objrom/internal/config"
	"github.com/Faultbox/objrom/internal/emit"
	"github.com/Faultbox/objrom/internal/mesh"
	"github.com/Faultbox/objrom/internal/texture"
	"github.com/Faultbox/objrom/internal/uvatlas"
	"github.com/Faultbox/objrom/pkg/formats"
)

// Conversion errors.
var (
	ErrEmptyGeometry    = errors.New("no vertices or triangles to emit")
	ErrTooManyMaterials = errors.New("more materials than a uint8 group index can address")
)

// maxMaterials is the number of distinct Group values.
const maxMaterials = 256

// Result is the output of one conversion.
type Result struct {
	Name      string // Block name: file stem plus profile suffix
	Text      string // Empty when Empty is set
	Empty     bool
	Mesh      mesh.Stats
	Materials int
	Atlas     *uvatlas.Atlas // Nil when no UVs were emitted
}

// Err returns ErrEmptyGeometry for empty results, nil otherwise.
func (r *Result) Err() error {
	if r.Empty {
		return fmt.Errorf("%s: %w", r.Name, ErrEmptyGeometry)
	}
	return nil
}

// MeshOptions maps a profile onto geometry options.
func MeshOptions(p config.Profile) mesh.Options {
	return mesh.Options{
		Center: p.CenterVertices,
		Winding: mesh.WindingPolicy{
			Normalize: p.Winding.Normalize,
			Invert:    p.Winding.Invert,
		},
	}
}

// AtlasOptions maps a profile onto UV options.
func AtlasOptions(p config.Profile) (uvatlas.Options, error) {
	mode, err := p.AddressMode()
	if err != nil {
		return uvatlas.Options{}, err
	}
	return uvatlas.Options{
		Emit:       p.EmitUV,
		Mips:       p.EmitUVMips,
		ForcePow2:  p.UV.ForcePow2,
		VFlip:      p.UV.VFlip,
		Wrap:       mode,
		MipMinSize: p.UV.MipMinSize,
	}, nil
}

// Convert produces the block for obj under profile p. name is the file stem; tex is the
// companion texture size, zero when unknown. obj is not modified.
func Convert(obj *formats.OBJ, name string, p config.Profile, tex texture.Size) (*Result, error) {
	atlasOpts, err := AtlasOptions(p)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Suffix, err)
	}

	m := mesh.Process(obj, MeshOptions(p))
	res := &Result{
		Name:      name + p.Suffix,
		Mesh:      m.Stats,
		Materials: len(m.Materials),
	}
	if m.Empty() {
		res.Empty = true
		return res, nil
	}
	if len(m.Materials) > maxMaterials {
		return nil, fmt.Errorf("%w: %d", ErrTooManyMaterials, len(m.Materials))
	}

	block := emit.Block{
		Name:         res.Name,
		Vertices:     m.Positions,
		VertexScale:  p.VertexScale,
		Triangles:    m.Indices(),
		Groups:       m.Groups(),
		Materials:    m.Materials,
		UseUnitMacro: p.UnitMacro,
	}
	if p.EmitVertexNormals {
		block.VertexNormals = mesh.QuantizeAll(m.VertexNormals())
	}
	if p.EmitFaceNormals {
		block.FaceNormals = mesh.QuantizeAll(m.FaceNormals())
	}

	if atlas, ok := uvatlas.Build(uvatlas.Input{
		TexCoords: obj.TexCoords,
		Positions: m.Positions,
		Corners:   m.Corners(),
		Texture:   tex,
	}, atlasOpts); ok {
		block.Atlas = atlas
		res.Atlas = atlas
	}

	res.Text = emit.String(block)
	return res, nil
}
