package preview

import (
	"image"
	"sync"
)

// GalleryPadding separates thumbnail cells.
const GalleryPadding = 12

// Item is one skin shown in a Gallery.
type Item struct {
	Name     string
	Data     []byte
	Geometry string
}

// Gallery is a grid of auto-rotating mini previews, one context per item.
type Gallery struct {
	mu     sync.Mutex
	items  []Item
	minis  []*Renderer
	cellW  int
	cellH  int
	closed bool
}

func NewGallery(tracker *Tracker, items []Item, opts Options) *Gallery {
	opts = opts.normalized()
	g := &Gallery{
		items: items,
		minis: make([]*Renderer, len(items)),
		cellW: opts.Width,
		cellH: opts.Height,
	}
	for i, it := range items {
		g.minis[i] = NewRenderer(tracker, it.Data, it.Geometry, opts)
	}
	return g
}

func (g *Gallery) Len() int {
	return len(g.items)
}

func (g *Gallery) Item(i int) Item {
	return g.items[i]
}

// Columns is how many cells fit across a window width, at least one.
func (g *Gallery) Columns(width int) int {
	return max(1, (width-GalleryPadding)/(g.cellW+GalleryPadding))
}

// Cell is item i's rectangle in a window of the given width.
func (g *Gallery) Cell(i, width int) image.Rectangle {
	cols := g.Columns(width)
	x := GalleryPadding + (i%cols)*(g.cellW+GalleryPadding)
	y := GalleryPadding + (i/cols)*(g.cellH+GalleryPadding)
	return image.Rect(x, y, x+g.cellW, y+g.cellH)
}

// HitTest returns the item under (x, y), or -1.
func (g *Gallery) HitTest(x, y, width int) int {
	p := image.Pt(x, y)
	for i := range g.items {
		if p.In(g.Cell(i, width)) {
			return i
		}
	}
	return -1
}

// Frame renders item i's next auto-rotation step.
func (g *Gallery) Frame(i int) (*image.NRGBA, error) {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return nil, ErrDisposed
	}
	return g.minis[i].Frame()
}

// Dispose releases every mini context.
func (g *Gallery) Dispose() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for _, r := range g.minis {
		r.Dispose()
	}
}
