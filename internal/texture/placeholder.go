package texture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand/v2"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	strokeColor = color.NRGBA{0x11, 0x11, 0x11, 0xff}
	labelColor  = color.NRGBA{0, 0, 0, 140}
)

// Placeholder is a generated filler skin. PNG and DataURI carry the same pixels.
type Placeholder struct {
	Width   int
	Height  int
	Hue     float64
	Label   string
	PNG     []byte
	DataURI string
}

// PlaceholderGenerator draws filler skins: a random-hue background, a dark
// diagonal cross and a short hex label in the bottom-right corner.
// It is safe for concurrent use.
type PlaceholderGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaceholderGenerator uses src for hue and label; a nil src seeds randomly.
func NewPlaceholderGenerator(src rand.Source) *PlaceholderGenerator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &PlaceholderGenerator{rng: rand.New(src)}
}

// Generate draws a w×h placeholder. Zero dimensions default to 64×64.
func (g *PlaceholderGenerator) Generate(w, h int) (Placeholder, error) {
	if w <= 0 || h <= 0 {
		w, h = 64, 64
	}

	g.mu.Lock()
	hue := g.rng.Float64() * 360
	light := 0.60 + g.rng.Float64()*0.10
	label := fmt.Sprintf("%03x", g.rng.IntN(0x1000))
	g.mu.Unlock()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bg := hslToNRGBA(hue, 0.60, light)
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	fw, fh := float64(w), float64(h)
	stroke := math.Max(4, fw/12)
	drawStroke(img, 0.15*fw, 0.15*fh, 0.85*fw, 0.85*fh, stroke, strokeColor)
	drawStroke(img, 0.85*fw, 0.15*fh, 0.15*fw, 0.85*fh, stroke, strokeColor)
	drawLabel(img, label)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Placeholder{}, fmt.Errorf("texture: encode placeholder: %w", err)
	}
	data := buf.Bytes()

	return Placeholder{
		Width:   w,
		Height:  h,
		Hue:     hue,
		Label:   label,
		PNG:     data,
		DataURI: DataURI(data),
	}, nil
}

// DataURI wraps PNG bytes as a base64 data URI.
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}

// drawStroke paints a line segment with round caps: every pixel whose center
// lies within width/2 of the segment.
func drawStroke(img *image.NRGBA, x0, y0, x1, y1, width float64, c color.NRGBA) {
	r := width / 2
	b := img.Bounds()
	minX := max(b.Min.X, int(math.Floor(math.Min(x0, x1)-r)))
	maxX := min(b.Max.X-1, int(math.Ceil(math.Max(x0, x1)+r)))
	minY := max(b.Min.Y, int(math.Floor(math.Min(y0, y1)-r)))
	maxY := min(b.Max.Y-1, int(math.Ceil(math.Max(y0, y1)+r)))

	dx, dy := x1-x0, y1-y0
	segLen2 := dx*dx + dy*dy
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			t := 0.0
			if segLen2 > 0 {
				t = ((px-x0)*dx + (py-y0)*dy) / segLen2
				t = math.Max(0, math.Min(1, t))
			}
			ex, ey := px-(x0+t*dx), py-(y0+t*dy)
			if ex*ex+ey*ey <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// drawLabel stamps text bottom-right. The bitmap face is drawn at its native
// size and scaled up by whole steps for atlases wider than 64 px.
func drawLabel(img *image.NRGBA, label string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	tw := d.MeasureString(label).Ceil()
	th := face.Height

	glyphs := image.NewNRGBA(image.Rect(0, 0, tw, th))
	d.Dst = glyphs
	d.Src = &image.Uniform{C: labelColor}
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(label)

	b := img.Bounds()
	scale := max(1, b.Dx()/64)
	pad := 2 * scale
	dst := image.Rect(b.Max.X-tw*scale-pad, b.Max.Y-th*scale-pad+2*scale, b.Max.X-pad, b.Max.Y-pad+2*scale)
	draw.NearestNeighbor.Scale(img, dst, glyphs, glyphs.Bounds(), draw.Over, nil)
}

func hslToNRGBA(h, s, l float64) color.NRGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
