package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"mime"
	"strings"
)

// MaxBytes caps the size of an accepted skin file.
const MaxBytes = 1 << 20

var (
	ErrNotPNG     = errors.New("texture: not a PNG file")
	ErrTooLarge   = errors.New("texture: file exceeds 1 MiB")
	ErrDecode     = errors.New("texture: decode failed")
	ErrDimensions = errors.New("texture: invalid size")
)

// Size is one allowed skin atlas size.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// AllowedSizes lists the atlas sizes accepted for a skin, in order.
var AllowedSizes = []Size{
	{64, 32},
	{64, 64},
	{128, 128},
}

// IsAllowed reports whether w×h is an accepted atlas size.
func IsAllowed(w, h int) bool {
	for _, s := range AllowedSizes {
		if s.Width == w && s.Height == h {
			return true
		}
	}
	return false
}

func allowedList() string {
	parts := make([]string, len(AllowedSizes))
	for i, s := range AllowedSizes {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// Candidate is an image offered for acceptance: its bytes plus the file name
// and media type the client claimed for it.
type Candidate struct {
	Name        string
	ContentType string
	Data        []byte
}

// Validate accepts a candidate when it is typed as PNG (by name or by media
// type), fits under MaxBytes, decodes as PNG and has an allowed size.
// The returned Size is the decoded pixel size.
func Validate(ctx context.Context, c Candidate) (Size, error) {
	if !looksLikePNG(c.Name, c.ContentType) {
		return Size{}, ErrNotPNG
	}
	if len(c.Data) > MaxBytes {
		return Size{}, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return Size{}, err
	}

	img, err := png.Decode(bytes.NewReader(c.Data))
	if err != nil {
		return Size{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	if !IsAllowed(b.Dx(), b.Dy()) {
		return Size{}, fmt.Errorf("%w %dx%d, allowed: %s", ErrDimensions, b.Dx(), b.Dy(), allowedList())
	}
	return Size{Width: b.Dx(), Height: b.Dy()}, nil
}

// ValidateBytes re-checks bytes the program produced or accepted earlier.
// They are treated as PNG-typed so only content is checked.
func ValidateBytes(ctx context.Context, data []byte) (Size, error) {
	return Validate(ctx, Candidate{Name: "skin.png", ContentType: "image/png", Data: data})
}

func looksLikePNG(name, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(name), ".png") {
		return true
	}
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "image/png"
}
