package device

import (
	"fmt"

	"github.com/oledock/oledock/internal/bitmap"
)

// NOTE: these hold for the Arctis Nova Pro dock but might not for other
// products.
const (
	reportID         = 0x06
	cmdDraw          = 0x93
	cmdSetBrightness = 0x85
	cmdReturnToUI    = 0x95

	drawReportSize = 1024
	plainReportSize = 64

	// One draw report carries at most this many pixel columns.
	reportSplitWidth = 64
)

// chunk is a clipped sub-rectangle of a bitmap narrow enough for one draw
// report. All fields are in pixels and already validated against the
// screen bounds, so w and h always fit a byte.
type chunk struct {
	bm         *bitmap.Bitmap
	w, h       int
	dstX, dstY int
	srcX, srcY int
}

// splitForReport clips the bitmap against the screen and splits it into
// report-sized chunks. Negative destination offsets advance the source
// offset instead, so content hanging off the top/left edge still draws
// from its first visible pixel.
func (d *Device) splitForReport(bm *bitmap.Bitmap, x, y int) []chunk {
	w, h := bm.W, bm.H
	srcX, srcY := 0, 0
	if x < 0 {
		w += x
		srcX = -x
		x = 0
	}
	if y < 0 {
		h += y
		srcY = -y
		y = 0
	}
	if x > d.Width {
		x = d.Width
	}
	if y > d.Height {
		y = d.Height
	}
	if x+w > d.Width {
		w = d.Width - x
	}
	if y+h > d.Height {
		h = d.Height - y
	}
	if w <= 0 || h <= 0 {
		return nil
	}

	var chunks []chunk
	for off := 0; off < w; off += reportSplitWidth {
		cw := reportSplitWidth
		if w-off < cw {
			cw = w - off
		}
		chunks = append(chunks, chunk{
			bm:   bm,
			w:    cw,
			h:    h,
			dstX: x + off,
			dstY: y,
			srcX: srcX + off,
			srcY: srcY,
		})
	}
	return chunks
}

// encodeDrawReport packs one chunk into a feature report. The pixel blob
// is column-major: bit index ri = x*stride + y, where the stride pads each
// column to a byte boundary relative to the destination's absolute y.
// The stride formula is reverse-engineered from observed device behaviour;
// the round-trip test pins it down for the dimensions seen in practice.
func encodeDrawReport(c chunk) []byte {
	report := make([]byte, drawReportSize)
	report[0] = reportID
	report[1] = cmdDraw
	report[2] = byte(c.dstX)
	report[3] = byte(c.dstY)
	report[4] = byte(c.w)
	report[5] = byte(c.h)
	stride := (c.dstY%8 + c.h + 7) / 8 * 8
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			if !c.bm.At(c.srcX+x, c.srcY+y) {
				continue
			}
			ri := x*stride + y
			report[6+ri/8] |= 1 << (ri % 8)
		}
	}
	return report
}

// Draw writes a bitmap at the given screen offset, splitting it into as
// many feature reports as needed (left to right). The first I/O failure
// aborts the remaining chunks.
func (d *Device) Draw(bm *bitmap.Bitmap, x, y int) error {
	for _, c := range d.splitForReport(bm, x, y) {
		if _, err := d.oledDev.SendFeatureReport(encodeDrawReport(c)); err != nil {
			return fmt.Errorf("send draw report: %w", err)
		}
	}
	return nil
}

// SetBrightness sets the panel brightness. Valid values are 1 to 10.
func (d *Device) SetBrightness(value int) error {
	if value < 1 || value > 10 {
		return fmt.Errorf("brightness %d out of range 1-10", value)
	}
	report := make([]byte, plainReportSize)
	report[0] = reportID
	report[1] = cmdSetBrightness
	report[2] = byte(value)
	if _, err := d.oledDev.Write(report); err != nil {
		return fmt.Errorf("send brightness report: %w", err)
	}
	return nil
}

// ReturnToUI hands the screen back to the dock firmware's own UI. Used on
// graceful shutdown; no response is expected.
func (d *Device) ReturnToUI() error {
	report := make([]byte, plainReportSize)
	report[0] = reportID
	report[1] = cmdReturnToUI
	if _, err := d.oledDev.Write(report); err != nil {
		return fmt.Errorf("send return-to-ui report: %w", err)
	}
	return nil
}
