package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// FitSize picks the allowed atlas size for an arbitrary source: 2:1 images
// become 64×32, sources at least 128 px wide become 128×128 and everything
// else 64×64.
func FitSize(w, h int) Size {
	if IsAllowed(w, h) {
		return Size{w, h}
	}
	if w == 2*h {
		return Size{64, 32}
	}
	if w >= 128 {
		return Size{128, 128}
	}
	return Size{64, 64}
}

// ToSkinPNG re-encodes img as a PNG of an allowed size. Resizing uses
// nearest-neighbour so pixel art stays blocky.
func ToSkinPNG(img image.Image) ([]byte, Size, error) {
	b := img.Bounds()
	size := FitSize(b.Dx(), b.Dy())

	dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, Size{}, fmt.Errorf("texture: encode: %w", err)
	}
	return buf.Bytes(), size, nil
}

// ConvertFile loads a PNG, TGA, WebP or JPEG file and returns skin PNG bytes.
func ConvertFile(path string) ([]byte, Size, error) {
	img, err := LoadFile(path)
	if err != nil {
		return nil, Size{}, err
	}
	return ToSkinPNG(img)
}
