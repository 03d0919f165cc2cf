package raster

import (
	"image"
	"math"

	"skinpack-studio/internal/mesh"
)

// SampleNearest returns the texel under (u, v) with no filtering. V grows
// upward. The lookup is clamped to region so a face never bleeds into the
// neighbouring atlas cell.
func SampleNearest(tex *image.NRGBA, u, v float64, region mesh.UVRect) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	fw, fh := float64(w), float64(h)

	x := int(math.Floor(u * fw))
	y := int(math.Floor((1 - v) * fh))

	x0 := int(math.Round(region.UMin * fw))
	x1 := int(math.Round(region.UMax*fw)) - 1
	y0 := int(math.Round((1 - region.VMax) * fh))
	y1 := int(math.Round((1-region.VMin)*fh)) - 1
	x = clampInt(x, x0, x1)
	y = clampInt(y, y0, y1)
	x = clampInt(x, 0, w-1)
	y = clampInt(y, 0, h-1)

	i := y*tex.Stride + x*4
	p := tex.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
