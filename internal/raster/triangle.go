package raster

import (
	"image"
	"image/color"
	"math"

	"skinpack-studio/internal/mesh"
)

// AlphaCutoff is the lowest texel alpha an alpha-tested face draws.
const AlphaCutoff = 26

// Vertex is a projected corner: screen position, depth and texture coordinate.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Material says how a triangle is colored.
type Material struct {
	Tex       *image.NRGBA // nil draws Fallback
	Region    mesh.UVRect
	Fallback  color.NRGBA
	AlphaTest bool
}

// SignedArea is twice the screen-space area of a triangle. It is positive
// when the corners run clockwise on screen (y down), which is how the mesh
// winds faces that point at the viewer.
func SignedArea(v [3]Vertex) float64 {
	return (v[1].X-v[0].X)*(v[2].Y-v[0].Y) - (v[2].X-v[0].X)*(v[1].Y-v[0].Y)
}

// RasterizeTriangle fills a triangle with nearest-sampled texels, flat
// shading and a z-buffer test. Alpha-tested materials skip texels under
// AlphaCutoff; other materials are drawn opaque.
//
// This is the hot path; the pixel loop does not allocate.
func RasterizeTriangle(fb *FrameBuffer, v [3]Vertex, mat *Material, shade, invGamma float64) {
	x0, y0, z0 := v[0].X, v[0].Y, v[0].Z
	x1, y1, z1 := v[1].X, v[1].Y, v[1].Z
	x2, y2, z2 := v[2].X, v[2].Y, v[2].Z

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	hasTex := mat.Tex != nil
	fr, fg, fbl := mat.Fallback.R, mat.Fallback.G, mat.Fallback.B

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := fr, fg, fbl, uint8(255)
			if hasTex {
				u := w0*v[0].U + w1*v[1].U + w2*v[2].U
				tv := w0*v[0].V + w1*v[1].V + w2*v[2].V
				cr, cg, cb, ca = SampleNearest(mat.Tex, u, tv, mat.Region)
			}

			if mat.AlphaTest {
				if ca < AlphaCutoff {
					continue
				}
			}
			fb.ZBuf[zIdx] = z

			// sRGB decode, shade, encode
			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp255(math.Pow(srgbToLinear[cr]*shade, invGamma) * 255)
			fb.Color[pxIdx+1] = clamp255(math.Pow(srgbToLinear[cg]*shade, invGamma) * 255)
			fb.Color[pxIdx+2] = clamp255(math.Pow(srgbToLinear[cb]*shade, invGamma) * 255)
			fb.Color[pxIdx+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
