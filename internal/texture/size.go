// Package texture reads texture dimensions from image headers without decoding pixels.
package texture

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG SOF header
	_ "image/png"  // PNG IHDR header
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP header
	_ "golang.org/x/image/tiff" // TIFF IFD header
	_ "golang.org/x/image/webp" // WebP VP8/VP8L/VP8X header
)

// Texture header errors.
var (
	ErrUnknownFormat  = errors.New("unknown texture format")
	ErrTruncatedImage = errors.New("truncated image header")
	ErrInvalidSize    = errors.New("invalid texture dimensions")
)

// Size is a texture's pixel dimensions. The zero value means "unknown".
type Size struct {
	Width  int
	Height int
}

// Known reports whether both dimensions are positive.
func (s Size) Known() bool {
	return s.Width > 0 && s.Height > 0
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// CompanionExtensions lists the texture extensions searched next to an OBJ, in priority order.
var CompanionExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp", ".tif", ".tiff", ".tga"}

// FindCompanion returns the path of a texture sharing the OBJ file's stem, or "".
// Extension matching is case-insensitive.
func FindCompanion(objPath string) string {
	dir := filepath.Dir(objPath)
	stem := strings.TrimSuffix(filepath.Base(objPath), filepath.Ext(objPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	byExt := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(strings.TrimSuffix(name, ext), stem) {
			continue
		}
		lower := strings.ToLower(ext)
		if _, ok := byExt[lower]; !ok {
			byExt[lower] = filepath.Join(dir, name)
		}
	}

	for _, ext := range CompanionExtensions {
		if p, ok := byExt[ext]; ok {
			return p
		}
	}
	return ""
}

// ReadSize opens an image file and reads its dimensions from the header.
func ReadSize(path string) (Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return Size{}, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()

	size, err := DecodeSize(bufio.NewReader(f), filepath.Ext(path))
	if err != nil {
		return Size{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return size, nil
}

// DecodeSize reads image dimensions from r. The extension is only consulted for TGA,
// which carries no magic number; every other format is sniffed from its signature.
func DecodeSize(r io.Reader, ext string) (Size, error) {
	if strings.EqualFold(ext, ".tga") {
		return decodeTGASize(r)
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Size{}, ErrUnknownFormat
		}
		return Size{}, fmt.Errorf("%w: %v", ErrTruncatedImage, err)
	}
	size := Size{Width: cfg.Width, Height: cfg.Height}
	if !size.Known() {
		return Size{}, fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	return size, nil
}
