// Package mesh builds the two-layer box humanoid used to preview skins and
// maps every box face onto its region of the skin atlas.
package mesh

import (
	"math"

	"skinpack-studio/internal/mathutil"
)

// Layer is the inner skin or the overlay shell around it.
type Layer int

const (
	LayerInner Layer = iota
	LayerOuter
)

func (l Layer) String() string {
	if l == LayerOuter {
		return "outer"
	}
	return "inner"
}

// Sampling is the texture filter a renderer must use.
type Sampling int

const (
	// Nearest keeps pixel art blocky. It is the only mode skins support.
	Nearest Sampling = iota
)

// Options selects the model variant.
type Options struct {
	// ArmWidth is ArmSlim (3) or ArmClassic (4). Zero means slim.
	ArmWidth int
	// AtlasHeight is 64 for modern skins or 32 for legacy 64×32 skins,
	// measured in 64-wide atlas units. Zero means 64.
	AtlasHeight int
}

// OptionsFor derives options from a texture size and arm width.
// A 128×128 texture maps to a 64-unit atlas height like 64×64.
func OptionsFor(texW, texH, armWidth int) Options {
	h := 64
	if texW > 0 && texH*64/texW == 32 {
		h = 32
	}
	return Options{ArmWidth: armWidth, AtlasHeight: h}
}

// FaceGeom is one textured quad.
type FaceGeom struct {
	Face    Face
	Corners [4]mathutil.Vec3 // TL, TR, BR, BL as seen from outside
	UV      [4][2]float64
	Region  UVRect // clamp region for sampling
	Normal  mathutil.Vec3
}

// Box is one layer of one body part.
type Box struct {
	Part        Part
	Layer       Layer
	Min, Max    mathutil.Vec3
	Faces       [6]FaceGeom
	DoubleSided bool
	AlphaTest   bool
}

// Triangle is the rasterizer's unit of work.
type Triangle struct {
	P           [3]mathutil.Vec3
	UV          [3][2]float64
	Region      UVRect
	Normal      mathutil.Vec3
	Layer       Layer
	DoubleSided bool
	AlphaTest   bool
}

// Model is a built humanoid.
type Model struct {
	Boxes       []Box
	ArmWidth    int
	AtlasWidth  int
	AtlasHeight int
	Sampling    Sampling

	tris []Triangle
}

// Build constructs the humanoid: six parts, each with an inner box and,
// where the atlas has one, an inflated outer box.
func Build(opts Options) *Model {
	arm := opts.ArmWidth
	if arm != ArmClassic {
		arm = ArmSlim
	}
	atlasH := opts.AtlasHeight
	if atlasH != 32 {
		atlasH = 64
	}
	legacy := atlasH == 32

	m := &Model{ArmWidth: arm, AtlasWidth: 64, AtlasHeight: atlasH, Sampling: Nearest}
	specs := partSpecs(arm)
	byPart := make(map[Part]partSpec, len(specs))
	for _, s := range specs {
		byPart[s.Part] = s
	}

	for _, s := range specs {
		center := placement(s.Part, arm)
		src, mirror := s, false
		if legacy && s.MirrorOf != "" {
			src, mirror = byPart[s.MirrorOf], true
		}

		inner := src.Inner
		m.Boxes = append(m.Boxes, buildBox(s, LayerInner, center, 0, inner, mirror, atlasH))

		if legacy && s.Part != PartHead {
			continue
		}
		m.Boxes = append(m.Boxes, buildBox(s, LayerOuter, center, s.Inflate, src.Outer, mirror, atlasH))
	}

	for _, b := range m.Boxes {
		for _, f := range b.Faces {
			tri := Triangle{
				Region:      f.Region,
				Normal:      f.Normal,
				Layer:       b.Layer,
				DoubleSided: b.DoubleSided,
				AlphaTest:   b.AlphaTest,
			}
			for _, idx := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
				t := tri
				for k, ci := range idx {
					t.P[k] = f.Corners[ci]
					t.UV[k] = f.UV[ci]
				}
				m.tris = append(m.tris, t)
			}
		}
	}
	return m
}

// Triangles returns two triangles per face, inner layers first.
func (m *Model) Triangles() []Triangle {
	return m.tris
}

// Bounds returns the axis-aligned extent of every box.
func (m *Model) Bounds() (lo, hi mathutil.Vec3) {
	lo = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, b := range m.Boxes {
		lo = lo.Min(b.Min)
		hi = hi.Max(b.Max)
	}
	return lo, hi
}

// Box returns the box for a part and layer.
func (m *Model) Box(p Part, l Layer) (Box, bool) {
	for _, b := range m.Boxes {
		if b.Part == p && b.Layer == l {
			return b, true
		}
	}
	return Box{}, false
}

func buildBox(s partSpec, layer Layer, center [3]float64, inflate float64, origin atlasOrigin, mirror bool, atlasH int) Box {
	hx := float64(s.W)/2 + inflate
	hy := float64(s.H)/2 + inflate
	hz := float64(s.D)/2 + inflate
	lo := mathutil.Vec3{center[0] - hx, center[1] - hy, center[2] - hz}
	hi := mathutil.Vec3{center[0] + hx, center[1] + hy, center[2] + hz}

	regions := BoxUV(origin.U, origin.V, s.W, s.H, s.D, 64, atlasH)
	if mirror {
		// A mirrored limb shows its outer side where the source had its inner side.
		regions[FaceRight], regions[FaceLeft] = regions[FaceLeft], regions[FaceRight]
	}

	b := Box{
		Part:        s.Part,
		Layer:       layer,
		Min:         lo,
		Max:         hi,
		DoubleSided: layer == LayerOuter,
		AlphaTest:   layer == LayerOuter,
	}
	corners := boxCorners(lo, hi)
	for f := FaceTop; f <= FaceBack; f++ {
		b.Faces[f] = FaceGeom{
			Face:    f,
			Corners: corners[f],
			UV:      regions[f].Corners(mirror),
			Region:  regions[f],
			Normal:  faceNormals[f],
		}
	}
	return b
}

var faceNormals = [6]mathutil.Vec3{
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
	FaceRight:  {-1, 0, 0},
	FaceFront:  {0, 0, 1},
	FaceLeft:   {1, 0, 0},
	FaceBack:   {0, 0, -1},
}

// boxCorners lists each face's corners TL, TR, BR, BL as seen from outside.
// Top has the back edge up; bottom has the front edge up.
func boxCorners(lo, hi mathutil.Vec3) [6][4]mathutil.Vec3 {
	x0, y0, z0 := lo[0], lo[1], lo[2]
	x1, y1, z1 := hi[0], hi[1], hi[2]
	v := func(x, y, z float64) mathutil.Vec3 { return mathutil.Vec3{x, y, z} }

	var c [6][4]mathutil.Vec3
	c[FaceTop] = [4]mathutil.Vec3{v(x0, y1, z0), v(x1, y1, z0), v(x1, y1, z1), v(x0, y1, z1)}
	c[FaceBottom] = [4]mathutil.Vec3{v(x0, y0, z1), v(x1, y0, z1), v(x1, y0, z0), v(x0, y0, z0)}
	c[FaceRight] = [4]mathutil.Vec3{v(x0, y1, z0), v(x0, y1, z1), v(x0, y0, z1), v(x0, y0, z0)}
	c[FaceFront] = [4]mathutil.Vec3{v(x0, y1, z1), v(x1, y1, z1), v(x1, y0, z1), v(x0, y0, z1)}
	c[FaceLeft] = [4]mathutil.Vec3{v(x1, y1, z1), v(x1, y1, z0), v(x1, y0, z0), v(x1, y0, z1)}
	c[FaceBack] = [4]mathutil.Vec3{v(x1, y1, z0), v(x0, y1, z0), v(x0, y0, z0), v(x1, y0, z0)}
	return c
}
