// Package viewer is the desktop skin browser: a grid of auto-rotating
// thumbnails, and a fullscreen orbit view for the clicked skin.
package viewer

import (
	"context"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	"skinpack-studio/internal/logging"
	"skinpack-studio/internal/preview"
)

// Game implements ebiten.Game.
type Game struct {
	gallery *preview.Gallery
	viewer  *preview.Viewer
	log     logging.Logger

	w, h int

	dragging     bool
	lastX, lastY int

	thumbs  []*surface
	fullImg *surface
}

// surface is a GPU image plus the premultiplied staging buffer WritePixels
// needs.
type surface struct {
	img  *ebiten.Image
	rgba *image.RGBA
}

// New builds the gallery window. supersample sets the thumbnail
// render-then-downscale factor; zero keeps the mini preview default.
func New(tracker *preview.Tracker, items []preview.Item, w, h, supersample int, log logging.Logger) *Game {
	if log == nil {
		log = logging.Nop()
	}
	thumbs := preview.MiniOptions()
	if supersample > 0 {
		thumbs.Supersample = supersample
	}
	return &Game{
		gallery: preview.NewGallery(tracker, items, thumbs),
		viewer:  preview.NewViewer(tracker, w, h),
		log:     log,
		w:       w,
		h:       h,
		thumbs:  make([]*surface, len(items)),
	}
}

func (g *Game) Update() error {
	mx, my := ebiten.CursorPosition()

	if g.viewer.IsOpen() {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.viewer.Key("Escape")
			g.dragging = false
			return nil
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			if g.viewer.ClickAt(mx, my) {
				return nil
			}
			g.dragging = true
			g.lastX, g.lastY = mx, my
		}
		if g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.viewer.Drag(float64(mx-g.lastX), float64(my-g.lastY))
			g.lastX, g.lastY = mx, my
		}
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			g.dragging = false
		}
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if i := g.gallery.HitTest(mx, my, g.w); i >= 0 {
			it := g.gallery.Item(i)
			r := g.viewer.Open(it.Data, it.Geometry)
			if err := r.TextureErr(); err != nil {
				g.log.Warn(context.Background(), "texture unreadable, showing fallback", "skin", it.Name, "err", err)
			}
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.viewer.IsOpen() {
		g.drawViewer(screen)
		return
	}

	for i := 0; i < g.gallery.Len(); i++ {
		cell := g.gallery.Cell(i, g.w)
		if cell.Min.Y > g.h {
			break
		}
		frame, err := g.gallery.Frame(i)
		if err != nil {
			continue
		}
		g.thumbs[i] = upload(g.thumbs[i], frame)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(cell.Min.X), float64(cell.Min.Y))
		screen.DrawImage(g.thumbs[i].img, op)
		ebitenutil.DebugPrintAt(screen, g.gallery.Item(i).Name, cell.Min.X, cell.Max.Y-16)
	}
	if g.gallery.Len() == 0 {
		ebitenutil.DebugPrint(screen, "no skins found")
	}
}

func (g *Game) drawViewer(screen *ebiten.Image) {
	frame, err := g.viewer.Frame()
	if err != nil || frame == nil {
		return
	}
	box := g.viewer.Box()
	g.fullImg = upload(g.fullImg, frame)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(box.Min.X), float64(box.Min.Y))
	screen.DrawImage(g.fullImg.img, op)
	ebitenutil.DebugPrintAt(screen, "drag to orbit, Esc or click outside to close", box.Min.X, box.Max.Y)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.viewer.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Close releases every rendering context.
func (g *Game) Close() {
	g.viewer.Close()
	g.gallery.Dispose()
}

// upload copies frame into s, reallocating when the size changed.
func upload(s *surface, frame *image.NRGBA) *surface {
	b := frame.Bounds()
	if s == nil || s.rgba.Bounds().Size() != b.Size() {
		if s != nil {
			s.img.Deallocate()
		}
		s = &surface{
			img:  ebiten.NewImage(b.Dx(), b.Dy()),
			rgba: image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy())),
		}
	}
	draw.Draw(s.rgba, s.rgba.Bounds(), frame, b.Min, draw.Src)
	s.img.WritePixels(s.rgba.Pix)
	return s
}
