package mesh

// Face indexes the six sides of a box. Right and Left are the character's
// own sides: Right faces -x, Left faces +x, Front faces +z.
type Face int

const (
	FaceTop Face = iota
	FaceBottom
	FaceRight
	FaceFront
	FaceLeft
	FaceBack
)

var faceNames = [...]string{"top", "bottom", "right", "front", "left", "back"}

func (f Face) String() string {
	if f < 0 || int(f) >= len(faceNames) {
		return "unknown"
	}
	return faceNames[f]
}

// Rect is a pixel rectangle in a 64-wide skin atlas.
type Rect struct {
	X, Y, W, H int
}

// BoxRegions unfolds a w×h×d box whose atlas origin is (u, v):
//
//	          [top w×d ][bottom w×d]
//	[right d][front w  ][left d    ][back w]   (height h, at row v+d)
//
// Seen from the front of the character the strip reads left, front, right,
// back, because the character's right side is on the viewer's left.
func BoxRegions(u, v, w, h, d int) [6]Rect {
	var r [6]Rect
	r[FaceTop] = Rect{u + d, v, w, d}
	r[FaceBottom] = Rect{u + d + w, v, w, d}
	r[FaceRight] = Rect{u, v + d, d, h}
	r[FaceFront] = Rect{u + d, v + d, w, h}
	r[FaceLeft] = Rect{u + d + w, v + d, d, h}
	r[FaceBack] = Rect{u + 2*d + w, v + d, w, h}
	return r
}

// UVRect is a normalized texture rectangle. V grows upward, so VMax is the
// top edge of the pixel region.
type UVRect struct {
	UMin, VMin, UMax, VMax float64
}

// Normalize converts a pixel rectangle to texture coordinates for an atlas
// atlasW×atlasH pixels large, flipping the vertical axis.
func Normalize(r Rect, atlasW, atlasH int) UVRect {
	w, h := float64(atlasW), float64(atlasH)
	return UVRect{
		UMin: float64(r.X) / w,
		UMax: float64(r.X+r.W) / w,
		VMax: 1 - float64(r.Y)/h,
		VMin: 1 - float64(r.Y+r.H)/h,
	}
}

// Corners returns the face's texture coordinates in corner order
// top-left, top-right, bottom-right, bottom-left. A mirrored face swaps
// left and right.
func (r UVRect) Corners(mirror bool) [4][2]float64 {
	l, rt := r.UMin, r.UMax
	if mirror {
		l, rt = rt, l
	}
	return [4][2]float64{
		{l, r.VMax},
		{rt, r.VMax},
		{rt, r.VMin},
		{l, r.VMin},
	}
}

// BoxUV returns normalized per-face texture rectangles for a box.
func BoxUV(u, v, w, h, d, atlasW, atlasH int) [6]UVRect {
	var out [6]UVRect
	for f, r := range BoxRegions(u, v, w, h, d) {
		out[f] = Normalize(r, atlasW, atlasH)
	}
	return out
}
