// Package uvatlas maps texture coordinates onto an integer texel grid sized from the
// source texture, with optional half-resolution mip grids.
package uvatlas

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/objrom/internal/texture"
	"github.com/Faultbox/objrom/pkg/formats"
	"github.com/Faultbox/objrom/pkg/math"
)

// ErrUnknownAddressMode is returned by ParseAddressMode.
var ErrUnknownAddressMode = errors.New("unknown UV address mode")

// unitEpsilon is the tolerance for "already inside [0,1]".
const unitEpsilon = 1e-6

// AddressMode selects how coordinates outside [0,1] are brought back into range.
type AddressMode uint8

const (
	AddressAuto  AddressMode = iota // Wrap if any value lies outside [0,1], else clamp
	AddressClamp                    // Saturate to [0,1]
	AddressWrap                     // Keep the fractional part
)

// String returns the config spelling of the mode.
func (m AddressMode) String() string {
	switch m {
	case AddressClamp:
		return "clamp"
	case AddressWrap:
		return "wrap"
	default:
		return "auto"
	}
}

// ParseAddressMode parses "auto", "clamp" or "wrap" (case-insensitive, "" = auto).
func ParseAddressMode(s string) (AddressMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return AddressAuto, nil
	case "clamp":
		return AddressClamp, nil
	case "wrap", "repeat":
		return AddressWrap, nil
	}
	return AddressAuto, fmt.Errorf("%w: %q", ErrUnknownAddressMode, s)
}

// Options controls Build.
type Options struct {
	Emit       bool
	Mips       bool
	ForcePow2  bool // Round each grid dimension up to a power of two
	VFlip      bool // v = 1 - v, for top-left texture origin
	Wrap       AddressMode
	MipMinSize int // Smallest mip dimension per axis (values < 1 mean 1)
}

// Input is the geometry Build reads.
type Input struct {
	TexCoords []formats.TexCoord
	Positions []math.Vec3              // Used for planar projection when TexCoords is empty
	Corners   [][3]formats.IndexTriple // Triangle corners in emitted order
	Texture   texture.Size             // Source texture pixel size
}

// Texel is an integer grid coordinate.
type Texel struct {
	U, V int
}

// Level is one grid resolution with a texel per triangle corner.
type Level struct {
	Width, Height int
	Texels        []Texel
}

// Atlas holds the master grid (level 0) followed by its mips.
type Atlas struct {
	Levels          []Level
	Mode            AddressMode // Resolved mode, never AddressAuto
	RangeNormalized bool        // Values were min-max normalized per axis
	Planar          bool        // Coordinates were projected from vertex XY
}

// Master returns level 0.
func (a *Atlas) Master() Level {
	return a.Levels[0]
}

// Count returns the number of texels per level (three per triangle).
func (a *Atlas) Count() int {
	if len(a.Levels) == 0 {
		return 0
	}
	return len(a.Levels[0].Texels)
}

// Build quantizes every triangle corner's texture coordinate. It returns false when
// emission is disabled or the texture size is unknown.
func Build(in Input, opts Options) (*Atlas, bool) {
	if !opts.Emit || !in.Texture.Known() {
		return nil, false
	}

	size := in.Texture
	if opts.ForcePow2 {
		size = texture.Size{Width: NextPow2(size.Width), Height: NextPow2(size.Height)}
	}

	atlas := &Atlas{Planar: len(in.TexCoords) == 0}
	values, present := collect(in, atlas.Planar)

	lo, hi, found := bounds(values, present)
	inUnit := !found || (lo.X >= -unitEpsilon && lo.Y >= -unitEpsilon &&
		hi.X <= 1+unitEpsilon && hi.Y <= 1+unitEpsilon)

	atlas.Mode = opts.Wrap
	if atlas.Mode == AddressAuto {
		atlas.Mode = AddressClamp
		if !inUnit {
			atlas.Mode = AddressWrap
		}
	}
	atlas.RangeNormalized = !inUnit

	span := hi.Sub(lo)
	master := Level{Width: size.Width, Height: size.Height, Texels: make([]Texel, len(values))}
	for i, v := range values {
		if !present[i] {
			continue
		}
		u, w := v.X, v.Y
		if inUnit {
			u, w = clamp01(u), clamp01(w)
		} else {
			u, w = rangeNormalize(u, lo.X, span.X), rangeNormalize(w, lo.Y, span.Y)
		}
		u, w = address(u, atlas.Mode), address(w, atlas.Mode)
		if opts.VFlip {
			w = 1 - w
		}
		master.Texels[i] = Texel{
			U: quantize(u, size.Width),
			V: quantize(w, size.Height),
		}
	}
	atlas.Levels = append(atlas.Levels, master)

	if opts.Mips {
		chain := MipChain(size.Width, size.Height, opts.MipMinSize)
		for l := 1; l < len(chain); l++ {
			atlas.Levels = append(atlas.Levels, downsample(master, chain[l], l))
		}
	}
	return atlas, true
}

// collect gathers one value per corner. present is false for corners without a texcoord
// in a textured mesh; those stay at texel (0,0) and do not affect the range.
func collect(in Input, planar bool) (values []math.Vec2, present []bool) {
	values = make([]math.Vec2, 0, 3*len(in.Corners))
	present = make([]bool, 0, 3*len(in.Corners))
	for _, tri := range in.Corners {
		for _, c := range tri {
			switch {
			case planar && c.V >= 0 && c.V < len(in.Positions):
				values = append(values, in.Positions[c.V].XY())
				present = append(present, true)
			case !planar && c.HasTexCoord() && c.VT < len(in.TexCoords):
				tc := in.TexCoords[c.VT]
				values = append(values, math.Vec2{X: tc.U(), Y: tc.V()})
				present = append(present, true)
			default:
				values = append(values, math.Vec2{})
				present = append(present, false)
			}
		}
	}
	return values, present
}

func bounds(values []math.Vec2, present []bool) (lo, hi math.Vec2, found bool) {
	for i, v := range values {
		if !present[i] {
			continue
		}
		if !found {
			lo, hi, found = v, v, true
			continue
		}
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi, found
}

// rangeNormalize maps [lo, lo+span] onto [0,1]. A constant axis has no range to
// stretch: a value already in [0,1] is kept and any other value lands on 0.5.
func rangeNormalize(x, lo, span float64) float64 {
	if span < unitEpsilon {
		if x >= -unitEpsilon && x <= 1+unitEpsilon {
			return clamp01(x)
		}
		return 0.5
	}
	return (x - lo) / span
}

func clamp01(x float64) float64 {
	return gomath.Max(0, gomath.Min(1, x))
}

// address applies clamp or wrap. Wrap deviates from the plain ((x mod 1)+1) mod 1
// fold for values inside the closed unit interval: those are returned unchanged, so
// 1.0 (including a range-normalized maximum) stays on the far edge instead of
// folding to 0. Values outside [0,1] use the fold.
func address(x float64, mode AddressMode) float64 {
	if mode != AddressWrap {
		return clamp01(x)
	}
	if x >= 0 && x <= 1 {
		return x
	}
	return gomath.Mod(gomath.Mod(x, 1)+1, 1)
}

func quantize(x float64, size int) int {
	q := int(gomath.Round(x * float64(size-1)))
	return max(0, min(size-1, q))
}
