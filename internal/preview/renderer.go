// Package preview renders skins on the humanoid model: auto-rotating
// thumbnails, the drag-to-orbit fullscreen viewer and still WebP images.
package preview

import (
	"errors"
	"image"
	"sync"

	"skinpack-studio/internal/mesh"
	"skinpack-studio/internal/postprocess"
	"skinpack-studio/internal/raster"
	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
	"skinpack-studio/internal/viewmatrix"
)

var ErrDisposed = errors.New("preview: renderer disposed")

// Renderer is one rendering context. It owns its framebuffer, decoded
// texture and model until Dispose.
type Renderer struct {
	mu       sync.Mutex
	opts     Options
	cam      viewmatrix.Camera
	model    *mesh.Model
	tex      *image.NRGBA
	texErr   error
	target   *raster.Target
	tracker  *Tracker
	disposed bool
}

// NewRenderer prepares a context for a skin. Undecodable texture bytes do
// not fail: the model renders in the fallback color and TextureErr reports
// why.
func NewRenderer(tracker *Tracker, data []byte, geometry string, opts Options) *Renderer {
	opts = opts.normalized()

	tex, texErr := texture.Decode(data)
	arm := mesh.ArmClassic
	if skin.IsSlim(geometry) {
		arm = mesh.ArmSlim
	}
	mopts := mesh.Options{ArmWidth: arm}
	if tex != nil {
		mopts = mesh.OptionsFor(tex.Rect.Dx(), tex.Rect.Dy(), arm)
	}

	r := &Renderer{
		opts:    opts,
		cam:     opts.Camera,
		model:   mesh.Build(mopts),
		tex:     tex,
		texErr:  texErr,
		target:  raster.NewTarget(opts.Width*opts.Supersample, opts.Height*opts.Supersample),
		tracker: tracker,
	}
	tracker.context(1)
	tracker.framebuffer(1)
	tracker.geometry(1)
	if tex != nil {
		tracker.texture(1)
	}
	return r
}

// Frame renders the current view and then advances auto-rotation.
func (r *Renderer) Frame() (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return nil, ErrDisposed
	}

	r.target.Draw(r.model, r.tex, r.cam)
	img := r.target.FB.Image()
	if r.opts.Supersample > 1 {
		img = postprocess.Downsample(img, r.opts.Width, r.opts.Height)
	}

	if r.opts.AutoRotate != 0 {
		r.cam = r.cam.Orbit(r.opts.AutoRotate, 0, 0)
	}
	return img, nil
}

// Orbit turns the camera by a drag of dx, dy pixels.
func (r *Renderer) Orbit(dx, dy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.cam = r.cam.Orbit(dx*r.opts.DragSpeed, dy*r.opts.DragSpeed, r.opts.PitchLimit)
}

// SetYaw points the camera at a fixed angle.
func (r *Renderer) SetYaw(yaw float64) {
	r.mu.Lock()
	r.cam.Yaw = yaw
	r.mu.Unlock()
}

// Resize replaces the framebuffer; the projection is refitted on the next
// frame.
func (r *Renderer) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed || (w == r.opts.Width && h == r.opts.Height) {
		return
	}
	r.opts.Width, r.opts.Height = w, h
	r.target = raster.NewTarget(w*r.opts.Supersample, h*r.opts.Supersample)
}

// Size returns the output size in pixels.
func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.Width, r.opts.Height
}

func (r *Renderer) Camera() viewmatrix.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cam
}

// TextureErr is the decode error that put the renderer in fallback mode.
func (r *Renderer) TextureErr() error {
	return r.texErr
}

// Dispose releases the framebuffer, texture and model. It is safe to call
// more than once.
func (r *Renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.disposed = true

	r.tracker.context(-1)
	r.tracker.framebuffer(-1)
	r.tracker.geometry(-1)
	if r.tex != nil {
		r.tracker.texture(-1)
	}
	r.target = nil
	r.tex = nil
	r.model = nil
}
