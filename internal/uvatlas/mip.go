package uvatlas

import (
	"math/bits"

	"github.com/Faultbox/objrom/internal/texture"
)

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// MipChain returns the grid sizes from the master down to minSize, master first.
// Each level halves both axes (floored), never dropping below minSize or growing an
// axis that already starts below it.
func MipChain(width, height, minSize int) []texture.Size {
	if minSize < 1 {
		minSize = 1
	}
	chain := []texture.Size{{Width: width, Height: height}}
	for width > minSize || height > minSize {
		w, h := halve(width, minSize), halve(height, minSize)
		if w == width && h == height {
			break
		}
		width, height = w, h
		chain = append(chain, texture.Size{Width: width, Height: height})
	}
	return chain
}

func halve(x, floor int) int {
	return min(x, max(x/2, floor))
}

// downsample derives a mip level: every master texel shifted right by level and
// clamped to the level's own bounds.
func downsample(master Level, size texture.Size, level int) Level {
	out := Level{Width: size.Width, Height: size.Height, Texels: make([]Texel, len(master.Texels))}
	for i, t := range master.Texels {
		out.Texels[i] = Texel{
			U: min(t.U>>level, size.Width-1),
			V: min(t.V>>level, size.Height-1),
		}
	}
	return out
}
