package preview

import "skinpack-studio/internal/viewmatrix"

// Options configures a rendering context. The mini preview and the
// fullscreen viewer are the same renderer with different options.
type Options struct {
	Width       int
	Height      int
	Supersample int

	// AutoRotate is the yaw added per frame, in radians. Zero leaves the
	// camera to Orbit.
	AutoRotate float64

	// DragSpeed converts drag pixels to radians.
	DragSpeed float64

	// PitchLimit bounds the tilt, in radians. Zero means no bound.
	PitchLimit float64

	Camera viewmatrix.Camera
}

// MiniOptions is the list-item thumbnail: small, auto-rotating.
func MiniOptions() Options {
	return Options{
		Width:       200,
		Height:      200,
		Supersample: 2,
		AutoRotate:  0.01,
		Camera:      viewmatrix.Camera{Pitch: 0.2},
	}
}

// ViewerOptions is the fullscreen viewer: drag to orbit, perspective camera.
func ViewerOptions(w, h int) Options {
	return Options{
		Width:       w,
		Height:      h,
		Supersample: 1,
		DragSpeed:   0.01,
		PitchLimit:  1.2,
		Camera:      viewmatrix.Camera{Pitch: 0.2, Perspective: true, FOV: viewmatrix.DefaultFOV},
	}
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = 200
	}
	if o.Height <= 0 {
		o.Height = o.Width
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	if o.DragSpeed == 0 {
		o.DragSpeed = 0.01
	}
	return o
}
