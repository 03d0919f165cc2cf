package preview

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
)

// Still renders one frame of a skin at the given yaw. The frame is drawn
// at supersample times size and filtered down; zero keeps the mini preview
// factor.
func Still(tracker *Tracker, data []byte, geometry string, yaw float64, size, supersample int) (*image.NRGBA, error) {
	opts := MiniOptions()
	opts.Width, opts.Height = size, size
	opts.AutoRotate = 0
	if supersample > 0 {
		opts.Supersample = supersample
	}

	r := NewRenderer(tracker, data, geometry, opts)
	defer r.Dispose()
	r.SetYaw(yaw)
	return r.Frame()
}

// Thumbnail renders one still of a skin at the given yaw and returns it
// WebP-encoded.
func Thumbnail(data []byte, geometry string, yaw float64, size int) ([]byte, error) {
	return TrackedThumbnail(nil, data, geometry, yaw, size, 0)
}

// TrackedThumbnail is Thumbnail with the short-lived context counted by
// tracker.
func TrackedThumbnail(tracker *Tracker, data []byte, geometry string, yaw float64, size, supersample int) ([]byte, error) {
	img, err := Still(tracker, data, geometry, yaw, size, supersample)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodeWebP(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeWebP writes a lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("preview: webp encode: %w", err)
	}
	return nil
}
