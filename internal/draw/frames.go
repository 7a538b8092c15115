package draw

import (
	"bytes"
	"fmt"
	"image"
	idraw "image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/oledock/oledock/internal/bitmap"
)

// DecodeBitmap converts encoded image bytes to a 1-bit bitmap.
func DecodeBitmap(data []byte, threshold uint8) (*bitmap.Bitmap, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return bitmap.FromImage(img, threshold), nil
}

// DecodeFrames loads an image file as a frame sequence. GIFs keep their
// per-frame delays; any other format decodes to a single frame without a
// delay.
func DecodeFrames(path string, threshold uint8) ([]Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format != "gif" {
		bm, err := DecodeBitmap(data, threshold)
		if err != nil {
			return nil, err
		}
		return []Frame{{Bitmap: bm}}, nil
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	// Frames can be partial updates; composite each onto a running canvas.
	canvas := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	frames := make([]Frame, 0, len(g.Image))
	for i, src := range g.Image {
		idraw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, idraw.Over)
		var delay time.Duration
		if i < len(g.Delay) {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		frames = append(frames, Frame{
			Bitmap: bitmap.FromImage(canvas, threshold),
			Delay:  delay,
		})
	}
	return frames, nil
}
