package device

import (
	"image"
	"log"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"

	"github.com/oledock/oledock/internal/bitmap"
	dock "github.com/oledock/oledock/internal/device"
)

// SimScreen renders the OLED panel in a desktop window instead of the
// dock, so the server can run without hardware. It never disconnects and
// reports no telemetry.
type SimScreen struct {
	lock    sync.RWMutex
	canvas  *bitmap.Bitmap
	lastImg image.Image

	window *app.Window
}

func NewSimScreen() *SimScreen {
	s := &SimScreen{
		canvas: bitmap.New(dock.ScreenWidth, dock.ScreenHeight, false),
	}
	s.lastImg = s.canvas.ToImage()

	s.window = app.NewWindow(app.Size(unit.Px(256), unit.Px(128)), app.MinSize(unit.Px(128), unit.Px(64)))
	go func() {
		if err := s.gioloop(); err != nil {
			log.Fatal(err)
		}
	}()
	go app.Main()

	return s
}

func (s *SimScreen) Size() (int, int) {
	return s.canvas.W, s.canvas.H
}

func (s *SimScreen) Draw(bm *bitmap.Bitmap, x, y int) error {
	s.lock.Lock()
	s.canvas.Blit(bm, x, y, true)
	s.lastImg = s.canvas.ToImage()
	s.lock.Unlock()

	s.window.Invalidate()
	return nil
}

func (s *SimScreen) Reconnect() error {
	return nil
}

func (s *SimScreen) Events() ([]dock.Event, error) {
	return nil, nil
}

func (s *SimScreen) Close() {
	s.window.Close()
}

func (s *SimScreen) gioloop() error {
	var ops op.Ops
	for {
		e := <-s.window.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			s.lock.RLock()
			lastImg := s.lastImg
			s.lock.RUnlock()

			img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
			img.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
