package mesh

// Part names a body part.
type Part string

const (
	PartHead     Part = "head"
	PartBody     Part = "body"
	PartRightArm Part = "right_arm"
	PartLeftArm  Part = "left_arm"
	PartRightLeg Part = "right_leg"
	PartLeftLeg  Part = "left_leg"
)

// Arm widths in pixels.
const (
	ArmSlim    = 3
	ArmClassic = 4
)

type atlasOrigin struct{ U, V int }

type partSpec struct {
	Part    Part
	W, H, D int
	Inner   atlasOrigin
	Outer   atlasOrigin
	Inflate float64

	// Legacy atlases reuse the right-side region mirrored and have no
	// overlay except on the head.
	MirrorOf Part
}

// partSpecs returns the six parts in draw order for the given arm width.
// Sizes and origins are in 64-wide atlas pixels; W runs along x, H along y
// and D along z.
func partSpecs(arm int) []partSpec {
	return []partSpec{
		{Part: PartHead, W: 8, H: 8, D: 8, Inner: atlasOrigin{0, 0}, Outer: atlasOrigin{32, 0}, Inflate: 0.5},
		{Part: PartBody, W: 8, H: 12, D: 4, Inner: atlasOrigin{16, 16}, Outer: atlasOrigin{16, 32}, Inflate: 0.25},
		{Part: PartRightArm, W: arm, H: 12, D: 4, Inner: atlasOrigin{40, 16}, Outer: atlasOrigin{40, 32}, Inflate: 0.25},
		{Part: PartLeftArm, W: arm, H: 12, D: 4, Inner: atlasOrigin{32, 48}, Outer: atlasOrigin{48, 48}, Inflate: 0.25, MirrorOf: PartRightArm},
		{Part: PartRightLeg, W: 4, H: 12, D: 4, Inner: atlasOrigin{0, 16}, Outer: atlasOrigin{0, 32}, Inflate: 0.25},
		{Part: PartLeftLeg, W: 4, H: 12, D: 4, Inner: atlasOrigin{16, 48}, Outer: atlasOrigin{0, 48}, Inflate: 0.25, MirrorOf: PartRightLeg},
	}
}

// placement returns the box center for a part. Units are pixels with the
// origin at hip height; the character faces +z and its right side is -x.
func placement(p Part, arm int) [3]float64 {
	armX := 4 + float64(arm)/2
	switch p {
	case PartHead:
		return [3]float64{0, 16, 0}
	case PartBody:
		return [3]float64{0, 6, 0}
	case PartRightArm:
		return [3]float64{-armX, 6, 0}
	case PartLeftArm:
		return [3]float64{armX, 6, 0}
	case PartRightLeg:
		return [3]float64{-2, -6, 0}
	case PartLeftLeg:
		return [3]float64{2, -6, 0}
	}
	return [3]float64{}
}
