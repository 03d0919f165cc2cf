package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// AlphaBounds returns the smallest rectangle holding every non-transparent
// pixel, or an empty rectangle when there is none.
func AlphaBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// CropAndCenter crops to the non-transparent pixels, scales them to fill
// fillRatio of a w×h canvas keeping aspect, and centers the result.
func CropAndCenter(img *image.NRGBA, w, h int, fillRatio float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := AlphaBounds(img)
	if src.Empty() {
		return canvas
	}

	scale := min(float64(w)*fillRatio/float64(src.Dx()), float64(h)*fillRatio/float64(src.Dy()))
	newW := max(1, int(float64(src.Dx())*scale+0.5))
	newH := max(1, int(float64(src.Dy())*scale+0.5))

	offX := (w - newW) / 2
	offY := (h - newH) / 2
	dst := image.Rect(offX, offY, offX+newW, offY+newH)
	draw.CatmullRom.Scale(canvas, dst, img, src, draw.Src, nil)
	return canvas
}
