package draw

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/oledock/oledock/internal/bitmap"
	"github.com/oledock/oledock/internal/device"
)

// Screen is the transport the render thread draws to. *device.Device
// implements it; the simulation screen provides a hardware-free variant.
type Screen interface {
	Size() (w, h int)
	Draw(bm *bitmap.Bitmap, x, y int) error
	Reconnect() error
	Events() ([]device.Event, error)
}

// ShiftMode selects the anti-burn-in strategy.
type ShiftMode int

const (
	ShiftOff ShiftMode = iota
	ShiftSimple
)

// DrawEvent is published by the render thread: connection-state
// transitions plus passthrough device telemetry.
type DrawEvent struct {
	Data interface{}
}

type DeviceDisconnectedData struct{}
type DeviceReconnectedData struct{}
type DeviceEventData struct {
	Event device.Event
}

// Render thread commands.
type cmdPlay struct{}
type cmdPause struct{}
type cmdStop struct{}
type cmdSetShiftMode struct {
	mode ShiftMode
}

const (
	// Nudge the whole image by one pixel every 90 seconds to spread wear.
	shiftPeriod     = 90 * time.Second
	reconnectPeriod = time.Second

	// Redraw even unchanged frames once a second to mask device-side
	// display drift.
	redrawPeriod = time.Second

	// Gap between tiled repetitions of a scroll layer.
	scrollMargin = 30

	// Fallback for animation frames without their own delay.
	defaultFrameDelay = time.Second

	cmdBacklog   = 16
	eventBacklog = 256
)

var shiftOffsets = [9][2]int{
	{0, 0}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// DrawDevice is a thread-safe, layer-based drawing surface backed by a
// Screen. The Screen is owned exclusively by the render goroutine from
// construction until Stop returns it.
type DrawDevice struct {
	width  int
	height int
	layers *layerStore
	cmds   chan interface{}
	events chan DrawEvent
	done   chan Screen
	clock  clockwork.Clock

	Texter *TextRenderer
}

// NewDrawDevice starts a render thread over the given screen. The screen
// is assumed to be connected.
func NewDrawDevice(screen Screen, fps int) *DrawDevice {
	return newDrawDevice(screen, fps, clockwork.NewRealClock())
}

func newDrawDevice(screen Screen, fps int, clock clockwork.Clock) *DrawDevice {
	w, h := screen.Size()
	dd := &DrawDevice{
		width:  w,
		height: h,
		layers: &layerStore{},
		cmds:   make(chan interface{}, cmdBacklog),
		events: make(chan DrawEvent, eventBacklog),
		done:   make(chan Screen, 1),
		clock:  clock,
		Texter: NewTextRenderer(),
	}
	go dd.run(screen, fps)
	return dd
}

// Size returns the screen dimensions in pixels.
func (dd *DrawDevice) Size() (int, int) {
	return dd.width, dd.height
}

// AddLayer adds a layer on top of the existing ones; it shows on the next
// render tick.
func (dd *DrawDevice) AddLayer(layer Layer) LayerID {
	return dd.layers.add(layer)
}

func (dd *DrawDevice) RemoveLayer(id LayerID) {
	dd.layers.remove(id)
}

func (dd *DrawDevice) RemoveLayers(ids []LayerID) {
	dd.layers.removeMany(ids)
}

func (dd *DrawDevice) ClearLayers() {
	dd.layers.clear()
}

// ReplaceLayers removes and adds layers as one atomic edit: no render tick
// can observe the removal without the additions.
func (dd *DrawDevice) ReplaceLayers(removeIDs []LayerID, add []Layer) []LayerID {
	return dd.layers.replace(removeIDs, add)
}

// CenterBitmap returns the position that centers a bitmap on screen.
func (dd *DrawDevice) CenterBitmap(bm *bitmap.Bitmap) (int, int) {
	return (dd.width - bm.W) / 2, (dd.height - bm.H) / 2
}

// TextLayers builds one layer per text line without adding them: lines
// wider than the screen become scroll layers, others centered images.
// A nil x or y centers the block on that axis.
func (dd *DrawDevice) TextLayers(text string, x, y *int) []Layer {
	bitmaps := dd.Texter.RenderLines(text)
	lineHeight := dd.Texter.LineHeight()
	centerY := (dd.height - lineHeight*len(bitmaps)) / 2
	layers := make([]Layer, 0, len(bitmaps))
	for i, bm := range bitmaps {
		ly := centerY
		if y != nil {
			ly = *y
		}
		ly += i * lineHeight
		if bm.W >= dd.width {
			layers = append(layers, ScrollLayer{Bitmap: bm, Y: ly})
		} else {
			lx := (dd.width - bm.W) / 2
			if x != nil {
				lx = *x
			}
			layers = append(layers, ImageLayer{Bitmap: bm, X: lx, Y: ly})
		}
	}
	return layers
}

// AddText renders text and adds the resulting layers in one batch.
func (dd *DrawDevice) AddText(text string, x, y *int) []LayerID {
	return dd.ReplaceLayers(nil, dd.TextLayers(text, x, y))
}

func (dd *DrawDevice) Play() {
	dd.cmds <- cmdPlay{}
}

// Pause stops compositing and writing; reconnects and event polling keep
// running.
func (dd *DrawDevice) Pause() {
	dd.cmds <- cmdPause{}
}

func (dd *DrawDevice) SetShiftMode(mode ShiftMode) {
	dd.cmds <- cmdSetShiftMode{mode: mode}
}

// TryEvent returns the next pending event, if any.
func (dd *DrawDevice) TryEvent() (DrawEvent, bool) {
	select {
	case ev := <-dd.events:
		return ev, true
	default:
		return DrawEvent{}, false
	}
}

// PollEvent blocks until an event is available.
func (dd *DrawDevice) PollEvent() DrawEvent {
	return <-dd.events
}

// EventChannel exposes the event stream for select loops.
func (dd *DrawDevice) EventChannel() <-chan DrawEvent {
	return dd.events
}

// Stop finishes the current tick, joins the render thread and hands the
// screen back to the caller. Stop is the last command honored.
func (dd *DrawDevice) Stop() Screen {
	dd.cmds <- cmdStop{}
	return <-dd.done
}

func (dd *DrawDevice) run(screen Screen, fps int) {
	tickPeriod := time.Second / time.Duration(fps)
	prevFrame := bitmap.New(0, 0, false)
	playing := false
	shiftMode := ShiftOff
	shiftIdx := 0
	lastShift := dd.clock.Now()
	connected := true
	lastConnectAttempt := dd.clock.Now()
	lastDraw := dd.clock.Now()

	for {
		tickStart := dd.clock.Now()
		stopAfterTick := false

		// Drain pending commands; for shift mode the last writer wins.
	drain:
		for {
			select {
			case cmd := <-dd.cmds:
				switch c := cmd.(type) {
				case cmdPlay:
					playing = true
				case cmdPause:
					playing = false
				case cmdSetShiftMode:
					shiftMode = c.mode
				case cmdStop:
					stopAfterTick = true
				}
			default:
				break drain
			}
		}

		// Attempt to reconnect at most once per period.
		if !connected && tickStart.Sub(lastConnectAttempt) >= reconnectPeriod {
			lastConnectAttempt = tickStart
			if err := screen.Reconnect(); err != nil {
				logrus.Debugf("Reconnect attempt failed: %v", err)
			} else {
				connected = true
				dd.events <- DrawEvent{Data: DeviceReconnectedData{}}
				logrus.Infof("Draw device reconnected")
			}
		}

		if connected && playing {
			shiftX, shiftY := 0, 0
			if shiftMode == ShiftSimple {
				if tickStart.Sub(lastShift) >= shiftPeriod {
					shiftIdx = (shiftIdx + 1) % len(shiftOffsets)
					lastShift = tickStart
				}
				shiftX, shiftY = shiftOffsets[shiftIdx][0], shiftOffsets[shiftIdx][1]
			}

			frame := dd.composite(tickStart, shiftX, shiftY)

			if !frame.Equal(prevFrame) || tickStart.Sub(lastDraw) >= redrawPeriod {
				lastDraw = tickStart
				if err := screen.Draw(frame, 0, 0); err != nil {
					connected = false
					dd.events <- DrawEvent{Data: DeviceDisconnectedData{}}
					logrus.Warnf("Draw failed, device disconnected: %v", err)
				} else {
					prevFrame = frame
				}
			}
		}

		// Republish pending device telemetry.
		if connected {
			events, err := screen.Events()
			if err != nil {
				connected = false
				dd.events <- DrawEvent{Data: DeviceDisconnectedData{}}
				logrus.Warnf("Status read failed, device disconnected: %v", err)
			} else {
				for _, ev := range events {
					dd.events <- DrawEvent{Data: DeviceEventData{Event: ev}}
				}
			}
		}

		if stopAfterTick {
			break
		}

		// Sleep only the residual; an overrunning tick proceeds
		// immediately.
		elapsed := dd.clock.Now().Sub(tickStart)
		if elapsed < tickPeriod {
			dd.clock.Sleep(tickPeriod - elapsed)
		}
	}
	dd.done <- screen
}

// composite updates per-layer render state and blits every layer, in
// insertion order, onto a fresh screen-sized frame. The layer lock is held
// for the duration of the pass, not across the device write.
func (dd *DrawDevice) composite(now time.Time, shiftX, shiftY int) *bitmap.Bitmap {
	frame := bitmap.New(dd.width, dd.height, false)
	dd.layers.lock.Lock()
	defer dd.layers.lock.Unlock()
	for _, e := range dd.layers.entries {
		switch l := e.layer.(type) {
		case ImageLayer:
			frame.Blit(l.Bitmap, l.X+shiftX, l.Y+shiftY, false)
		case AnimationLayer:
			if len(l.Frames) == 0 {
				continue
			}
			f := l.Frames[e.anim.ticks%len(l.Frames)]
			frame.Blit(f.Bitmap, l.X+shiftX, l.Y+shiftY, false)
			if l.FollowFPS {
				e.anim.ticks++
			} else if e.anim.nextUpdate.IsZero() {
				e.anim.nextUpdate = now.Add(frameDelay(f))
			} else if !now.Before(e.anim.nextUpdate) {
				e.anim.ticks++
				next := l.Frames[e.anim.ticks%len(l.Frames)]
				e.anim.nextUpdate = e.anim.nextUpdate.Add(frameDelay(next))
			}
		case ScrollLayer:
			tileW := l.Bitmap.W + scrollMargin
			dupes := 1 + dd.width/tileW
			for i := 0; i <= dupes; i++ {
				frame.Blit(l.Bitmap, e.scroll.x+i*tileW+shiftX, l.Y+shiftY, false)
			}
			e.scroll.x--
			if e.scroll.x <= -tileW {
				e.scroll.x += tileW
			}
		}
	}
	return frame
}

func frameDelay(f Frame) time.Duration {
	if f.Delay <= 0 {
		return defaultFrameDelay
	}
	return f.Delay
}
