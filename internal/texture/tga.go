package texture

import (
	"fmt"
	"io"
)

const tgaHeaderSize = 18

// decodeTGASize reads the 18-byte TGA header. Only true-color (2), grayscale (3) and
// their RLE variants (10, 11) are accepted, the types exported by common texture tools.
func decodeTGASize(r io.Reader) (Size, error) {
	var header [tgaHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Size{}, fmt.Errorf("%w: TGA header", ErrTruncatedImage)
	}

	colorMapType := header[1]
	imageType := header[2]
	width := int(header[12]) | int(header[13])<<8
	height := int(header[14]) | int(header[15])<<8
	bpp := int(header[16])

	if colorMapType > 1 {
		return Size{}, fmt.Errorf("%w: TGA color map type %d", ErrUnknownFormat, colorMapType)
	}
	switch imageType {
	case 2, 3, 10, 11:
	default:
		return Size{}, fmt.Errorf("%w: TGA image type %d", ErrUnknownFormat, imageType)
	}
	switch bpp {
	case 8, 16, 24, 32:
	default:
		return Size{}, fmt.Errorf("%w: TGA bit depth %d", ErrUnknownFormat, bpp)
	}

	size := Size{Width: width, Height: height}
	if !size.Known() {
		return Size{}, fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	return size, nil
}
