package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oledock/oledock/internal/bitmap"
)

// decodeDrawReports reconstructs the screen from captured draw reports
// using the documented column-major layout.
func decodeDrawReports(t *testing.T, reports [][]byte) *bitmap.Bitmap {
	t.Helper()
	screen := bitmap.New(ScreenWidth, ScreenHeight, false)
	for _, report := range reports {
		require.Len(t, report, drawReportSize)
		require.Equal(t, byte(reportID), report[0])
		require.Equal(t, byte(cmdDraw), report[1])
		dstX, dstY := int(report[2]), int(report[3])
		w, h := int(report[4]), int(report[5])
		stride := (dstY%8 + h + 7) / 8 * 8
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				ri := x*stride + y
				require.Less(t, 6+ri/8, drawReportSize)
				if report[6+ri/8]&(1<<(ri%8)) != 0 {
					screen.Set(dstX+x, dstY+y, true)
				}
			}
		}
	}
	return screen
}

func patternBitmap(w, h int) *bitmap.Bitmap {
	bm := bitmap.New(w, h, false)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bm.Set(x, y, (x*7+y*13)%3 == 0)
		}
	}
	return bm
}

// Brute-forces the bit-packing stride formula: for every small combination
// of destination alignment and chunk size, encoding then decoding must
// recover the exact on/off matrix the draw was asked for.
func TestDrawRoundTrip(t *testing.T) {
	for dstX := 0; dstX <= 8; dstX++ {
		for dstY := 0; dstY <= 8; dstY++ {
			for w := 1; w <= 10; w++ {
				for h := 1; h <= 10; h++ {
					backend := twoRoleBackend()
					dev, err := ConnectWith(backend)
					require.NoError(t, err)

					bm := patternBitmap(w, h)
					require.NoError(t, dev.Draw(bm, dstX, dstY))

					want := bitmap.New(ScreenWidth, ScreenHeight, false)
					want.Blit(bm, dstX, dstY, false)
					got := decodeDrawReports(t, backend.devices["oled-role"].features)
					if !got.Equal(want) {
						t.Fatalf("round trip mismatch at dst=(%d,%d) size=%dx%d", dstX, dstY, w, h)
					}
				}
			}
		}
	}
}

// Same round trip for chunked and partially off-screen draws.
func TestDrawRoundTripEdges(t *testing.T) {
	cases := []struct {
		name string
		w, h int
		x, y int
	}{
		{"two chunks", 100, 40, 10, 3},
		{"full screen", ScreenWidth, ScreenHeight, 0, 0},
		{"off left", 40, 20, -15, 5},
		{"off top", 40, 20, 5, -7},
		{"off top left", 40, 20, -3, -3},
		{"off right", 40, 20, 110, 5},
		{"off bottom", 40, 20, 5, 55},
		{"chunk boundary", 64, 64, 0, 0},
		{"wider than screen", 200, 10, -20, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := twoRoleBackend()
			dev, err := ConnectWith(backend)
			require.NoError(t, err)

			bm := patternBitmap(tc.w, tc.h)
			require.NoError(t, dev.Draw(bm, tc.x, tc.y))

			want := bitmap.New(ScreenWidth, ScreenHeight, false)
			want.Blit(bm, tc.x, tc.y, false)
			got := decodeDrawReports(t, backend.devices["oled-role"].features)
			if !got.Equal(want) {
				t.Fatalf("round trip mismatch at (%d,%d) size=%dx%d", tc.x, tc.y, tc.w, tc.h)
			}
		})
	}
}
