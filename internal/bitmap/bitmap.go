package bitmap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/bits-and-blooms/bitset"
)

// Bitmap is a 1-bit-per-pixel raster. Pixels are stored row-major in a
// packed bit set whose length always equals W*H.
type Bitmap struct {
	W    int
	H    int
	bits *bitset.BitSet
}

// New creates a bitmap with every pixel set to on.
func New(w, h int, on bool) *Bitmap {
	b := &Bitmap{W: w, H: h, bits: bitset.New(uint(w * h))}
	if on && w*h > 0 {
		b.bits.FlipRange(0, uint(w*h))
	}
	return b
}

func (b *Bitmap) At(x, y int) bool {
	return b.bits.Test(uint(y*b.W + x))
}

func (b *Bitmap) Set(x, y int, on bool) {
	b.bits.SetTo(uint(y*b.W+x), on)
}

// Crop copies a sub-rectangle into a new bitmap. Out of bounds positions
// and sizes are an error.
func (b *Bitmap) Crop(x, y, w, h int) (*Bitmap, error) {
	if x < 0 || y < 0 || x > b.W || y > b.H {
		return nil, fmt.Errorf("crop origin (%d,%d) out of bounds for %dx%d bitmap", x, y, b.W, b.H)
	}
	if w < 0 || h < 0 || w > b.W-x || h > b.H-y {
		return nil, fmt.Errorf("crop size %dx%d at (%d,%d) out of bounds for %dx%d bitmap", w, h, x, y, b.W, b.H)
	}
	c := New(w, h, false)
	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			c.Set(cx, cy, b.At(x+cx, y+cy))
		}
	}
	return c, nil
}

// Blit draws src onto b at (x, y). Bounds are not expanded: anything
// falling outside b is dropped. With opaque=true every source pixel is
// copied; otherwise only set pixels are copied, so unset source pixels act
// as if transparent.
func (b *Bitmap) Blit(src *Bitmap, x, y int, opaque bool) {
	for dy := 0; dy < b.H; dy++ {
		sy := dy - y
		if sy < 0 || sy >= src.H {
			continue
		}
		for dx := 0; dx < b.W; dx++ {
			sx := dx - x
			if sx < 0 || sx >= src.W {
				continue
			}
			if opaque {
				b.Set(dx, dy, src.At(sx, sy))
			} else if src.At(sx, sy) {
				b.Set(dx, dy, true)
			}
		}
	}
}

// Invert flips every pixel.
func (b *Bitmap) Invert() {
	if b.W*b.H > 0 {
		b.bits.FlipRange(0, uint(b.W*b.H))
	}
}

// Equal reports pixel-exact equality.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if o == nil {
		return false
	}
	return b.W == o.W && b.H == o.H && b.bits.Equal(o.bits)
}

func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{W: b.W, H: b.H, bits: b.bits.Clone()}
}

// FromImage converts an image to 1-bit: a pixel is set when the average of
// its RGB channels reaches threshold.
func FromImage(img image.Image, threshold uint8) *Bitmap {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy(), false)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			avg := (r>>8 + g>>8 + bl>>8) / 3
			if avg >= uint32(threshold) {
				b.Set(x, y, true)
			}
		}
	}
	return b
}

// ToImage renders the bitmap as a grayscale image, set pixels white.
func (b *Bitmap) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.At(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return img
}
