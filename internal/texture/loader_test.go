package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_PNG(t *testing.T) {
	red := color.NRGBA{R: 200, G: 10, B: 10, A: 255}
	img, err := Decode(solidPNG(t, 64, 64, red))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, red, img.NRGBAAt(5, 5))
}

func TestDecode_Placeholder(t *testing.T) {
	p, err := NewPlaceholderGenerator(nil).Generate(64, 64)
	require.NoError(t, err)
	_, err = ValidateBytes(context.Background(), p.PNG)
	require.NoError(t, err)

	img, err := Decode(p.PNG)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestDecode_JPEG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, uint8(255), img.Pix[3])
}

func TestDecode_TGA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	require.NoError(t, tga.Encode(&buf, src))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, img.NRGBAAt(1, 1))
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestLoadFile_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steve.png")
	require.NoError(t, os.WriteFile(path, solidPNG(t, 64, 32, color.NRGBA{A: 255}), 0o644))

	img, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dy())
}
