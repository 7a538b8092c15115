package draw

import (
	"image"
	"strings"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/oledock/oledock/internal/bitmap"
)

// TextRenderer rasterizes text into bitmaps with a fixed bitmap font.
type TextRenderer struct {
	face font.Face
}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{face: bitmapfont.Face}
}

// LineHeight is the vertical advance between rendered lines.
func (t *TextRenderer) LineHeight() int {
	m := t.face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// Render rasterizes a single line of text.
func (t *TextRenderer) Render(text string) *bitmap.Bitmap {
	return t.renderLine(strings.ReplaceAll(strings.ReplaceAll(text, "\r", ""), "\n", " "))
}

// RenderLines rasterizes text into one bitmap per line.
func (t *TextRenderer) RenderLines(text string) []*bitmap.Bitmap {
	lines := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	bitmaps := make([]*bitmap.Bitmap, 0, len(lines))
	for _, line := range lines {
		bitmaps = append(bitmaps, t.renderLine(line))
	}
	return bitmaps
}

func (t *TextRenderer) renderLine(line string) *bitmap.Bitmap {
	m := t.face.Metrics()
	w := font.MeasureString(t.face, line).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	img := image.NewGray(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: t.face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(line)
	return bitmap.FromImage(img, 0x80)
}
