package raster

import (
	"image"
	"image/color"

	"skinpack-studio/internal/mathutil"
	"skinpack-studio/internal/mesh"
	"skinpack-studio/internal/viewmatrix"
)

// FallbackColor paints the model when the texture is missing or broken.
var FallbackColor = color.NRGBA{160, 160, 170, 255}

// Target is a reusable render destination.
type Target struct {
	FB    *FrameBuffer
	Light LightConfig

	// Margin is kept free on every side, in pixels.
	Margin float64
}

// NewTarget allocates a w×h target with default lighting.
func NewTarget(w, h int) *Target {
	return &Target{
		FB:     NewFrameBuffer(w, h),
		Light:  DefaultLightConfig(),
		Margin: float64(min(w, h)) / 16,
	}
}

// Draw clears the target and renders the model seen through cam. A nil tex
// draws the inner layer in FallbackColor and skips the overlay.
func (t *Target) Draw(m *mesh.Model, tex *image.NRGBA, cam viewmatrix.Camera) {
	fb := t.FB
	fb.Clear()

	R := cam.Matrix()
	lo, hi := m.Bounds()
	proj := viewmatrix.Fit(lo, hi, R, cam, fb.Width, fb.Height, t.Margin)

	tris := m.Triangles()
	pts := make([]mathutil.Vec3, 0, len(tris)*3)
	for _, tri := range tris {
		pts = append(pts, tri.P[0], tri.P[1], tri.P[2])
	}
	px, py, pz := viewmatrix.Project(pts, R, proj)

	mat := Material{Tex: tex, Fallback: FallbackColor}
	for i, tri := range tris {
		if tex == nil && tri.AlphaTest {
			continue
		}

		var v [3]Vertex
		for k := 0; k < 3; k++ {
			j := i*3 + k
			v[k] = Vertex{X: px[j], Y: py[j], Z: pz[j], U: tri.UV[k][0], V: tri.UV[k][1]}
		}

		normal := R.MulVec3(tri.Normal)
		if SignedArea(v) <= 0 {
			if !tri.DoubleSided {
				continue
			}
			// inside of a shell
			normal = normal.Scale(-1)
		}

		mat.Region = tri.Region
		mat.AlphaTest = tri.AlphaTest
		RasterizeTriangle(fb, v, &mat, t.Light.ComputeShade(normal), t.Light.InvGamma)
	}
}

// RenderModel renders one frame into a new w×h image.
func RenderModel(m *mesh.Model, tex *image.NRGBA, cam viewmatrix.Camera, w, h int) *image.NRGBA {
	t := NewTarget(w, h)
	t.Draw(m, tex, cam)
	return t.FB.Image()
}
