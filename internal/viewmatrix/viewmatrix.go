// Package viewmatrix turns a camera orientation and a viewport into the
// rotation and projection used to rasterize a model.
package viewmatrix

import (
	"math"

	"skinpack-studio/internal/mathutil"
)

// DefaultFOV is the vertical field of view, in degrees, for perspective views.
const DefaultFOV = 45

// Camera orbits the model's center.
type Camera struct {
	Yaw         float64 // radians around +y
	Pitch       float64 // radians, positive looks down on the model
	Zoom        float64 // 1 fits the model; <=0 means 1
	Perspective bool
	FOV         float64 // degrees; 0 means DefaultFOV
}

// Matrix returns the model-to-view rotation: yaw first, then pitch.
func (c Camera) Matrix() mathutil.Mat3 {
	return mathutil.Mat3Mul(mathutil.RotX(c.Pitch), mathutil.RotY(c.Yaw))
}

// Orbit applies a drag: dx turns the model, dy tilts it. Pitch stays within
// ±limit radians.
func (c Camera) Orbit(dYaw, dPitch, limit float64) Camera {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch += dPitch
	if limit > 0 {
		c.Pitch = math.Max(-limit, math.Min(limit, c.Pitch))
	}
	return c
}

// Projection maps view-space points to pixel coordinates.
type Projection struct {
	Center      mathutil.Vec3 // view-space center of the model
	Scale       float64       // pixels per model unit
	HalfW       float64
	HalfH       float64
	Perspective bool
	camDist     float64
}

// Fit builds a projection that keeps the whole model inside a w×h viewport
// with margin pixels free on every side, at any rotation. The model is
// bounded by the sphere around [lo, hi], so the scale does not change as
// the camera turns. Pixels stay square whatever the aspect ratio.
func Fit(lo, hi mathutil.Vec3, R mathutil.Mat3, cam Camera, w, h int, margin float64) Projection {
	center := lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Len() / 2
	if radius < 0.001 {
		radius = 0.001
	}

	avail := math.Min(float64(w), float64(h)) - 2*margin
	if avail < 1 {
		avail = 1
	}
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	p := Projection{
		Center:      R.MulVec3(center),
		Scale:       avail / (2 * radius) * zoom,
		HalfW:       float64(w) / 2,
		HalfH:       float64(h) / 2,
		Perspective: cam.Perspective,
	}
	if cam.Perspective {
		fov := cam.FOV
		if fov == 0 {
			fov = DefaultFOV
		}
		p.camDist = radius / math.Tan(mathutil.Deg2Rad(fov/2))
		if p.camDist < 2*radius {
			p.camDist = 2 * radius
		}
	}
	return p
}

// Project transforms model-space points to screen X, screen Y (down) and
// depth (larger is nearer).
func Project(points []mathutil.Vec3, R mathutil.Mat3, p Projection) ([]float64, []float64, []float64) {
	n := len(points)
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)

	for i, v := range points {
		t := R.MulVec3(v).Sub(p.Center)

		if p.Perspective {
			depth := math.Max(p.camDist-t[2], 0.1)
			factor := p.camDist / depth
			t[0] *= factor
			t[1] *= factor
		}

		px[i] = t[0]*p.Scale + p.HalfW
		py[i] = -t[1]*p.Scale + p.HalfH
		pz[i] = t[2]
	}
	return px, py, pz
}
