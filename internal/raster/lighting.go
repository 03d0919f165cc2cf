package raster

import (
	"math"

	"skinpack-studio/internal/mathutil"
)

// LightConfig is an ambient term plus a key and a fill directional light,
// all in view space.
type LightConfig struct {
	Ambient  float64
	KeyDir   mathutil.Vec3
	Key      float64
	FillDir  mathutil.Vec3
	Fill     float64
	InvGamma float64
}

// DefaultLightConfig is a soft key light from the upper right front and a
// weaker fill from the left.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Ambient:  0.8,
		KeyDir:   mathutil.Vec3{1, 1, 1}.Normalize(),
		Key:      0.6,
		FillDir:  mathutil.Vec3{-1, 0.5, 0.5}.Normalize(),
		Fill:     0.3,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the light scalar for a view-space face normal,
// normalized so a face squarely lit by the key light gets 1.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	key := math.Max(0, normal.Dot(lc.KeyDir)) * lc.Key
	fill := math.Max(0, normal.Dot(lc.FillDir)) * lc.Fill
	shade := (lc.Ambient + key + fill) / (lc.Ambient + lc.Key)
	return math.Min(shade, 1.15)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}
