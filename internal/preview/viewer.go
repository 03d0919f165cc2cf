package preview

import (
	"image"
	"sync"
)

// ViewerBoxRatio is the share of the shorter window side the viewer box takes.
const ViewerBoxRatio = 0.9

// Viewer is the fullscreen viewer's controller. At most one rendering
// context is live: opening a skin disposes the previous one. Escape or a
// click outside the viewer box closes it.
type Viewer struct {
	mu      sync.Mutex
	tracker *Tracker
	w, h    int
	current *Renderer
}

func NewViewer(tracker *Tracker, w, h int) *Viewer {
	return &Viewer{tracker: tracker, w: w, h: h}
}

// Open shows a skin, replacing whatever was open.
func (v *Viewer) Open(data []byte, geometry string) *Renderer {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current != nil {
		v.current.Dispose()
	}
	bw, bh := v.boxSize()
	v.current = NewRenderer(v.tracker, data, geometry, ViewerOptions(bw, bh))
	return v.current
}

// Close tears the viewer down. Closing a closed viewer does nothing.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current != nil {
		v.current.Dispose()
		v.current = nil
	}
}

func (v *Viewer) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current != nil
}

// Key handles a key press and reports whether it closed the viewer.
func (v *Viewer) Key(name string) bool {
	if name != "Escape" || !v.IsOpen() {
		return false
	}
	v.Close()
	return true
}

// ClickAt closes the viewer when (x, y) falls outside the viewer box and
// reports whether it did.
func (v *Viewer) ClickAt(x, y int) bool {
	if !v.IsOpen() || image.Pt(x, y).In(v.Box()) {
		return false
	}
	v.Close()
	return true
}

// Drag orbits the open model.
func (v *Viewer) Drag(dx, dy float64) {
	v.mu.Lock()
	r := v.current
	v.mu.Unlock()
	if r != nil {
		r.Orbit(dx, dy)
	}
}

// Resize follows the window size; the box and projection are recomputed.
func (v *Viewer) Resize(w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if w <= 0 || h <= 0 {
		return
	}
	v.w, v.h = w, h
	if v.current != nil {
		v.current.Resize(v.boxSize())
	}
}

// Box is the viewer's area within the window, centered.
func (v *Viewer) Box() image.Rectangle {
	v.mu.Lock()
	defer v.mu.Unlock()
	bw, bh := v.boxSize()
	x0 := (v.w - bw) / 2
	y0 := (v.h - bh) / 2
	return image.Rect(x0, y0, x0+bw, y0+bh)
}

// Frame renders the open skin, or returns nil when closed.
func (v *Viewer) Frame() (*image.NRGBA, error) {
	v.mu.Lock()
	r := v.current
	v.mu.Unlock()
	if r == nil {
		return nil, nil
	}
	return r.Frame()
}

func (v *Viewer) boxSize() (int, int) {
	return max(1, int(float64(v.w)*ViewerBoxRatio)), max(1, int(float64(v.h)*ViewerBoxRatio))
}
