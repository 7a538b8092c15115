package srv

import (
	"time"

	"github.com/oledock/oledock/internal/bitmap"
	"github.com/oledock/oledock/internal/draw"
	"github.com/oledock/oledock/internal/images"
	"github.com/oledock/oledock/internal/srv/event"
	"github.com/oledock/oledock/internal/srv/probe"
)

const (
	timeLayerY  = 8
	mediaLayerY = 34

	notifMargin   = 2
	notifDuration = 5 * time.Second
)

// refreshHomeLayers rebuilds the clock and media layers as one batch.
// Unchanged content is left alone so the render thread keeps skipping
// identical frames.
func (s *ServerApp) refreshHomeLayers(now time.Time) {
	timeText := ""
	if s.ShowTime {
		timeText = now.Format("15:04:05")
	}

	media := probe.MediaInfo{}
	if s.ShowMedia {
		if info, ok := s.mediaProbe.NowPlaying(); ok {
			media = info
		}
	}

	if timeText == s.lastTimeText && media == s.lastMedia {
		return
	}

	var layers []draw.Layer
	if timeText != "" {
		y := timeLayerY
		layers = append(layers, s.drawDevice.TextLayers(timeText, nil, &y)...)
	}
	if media != (probe.MediaInfo{}) {
		text := media.Title
		if media.Artist != "" {
			text += "\n" + media.Artist
		}
		y := mediaLayerY
		layers = append(layers, s.drawDevice.TextLayers(text, nil, &y)...)
	}

	s.homeLayerIds = s.drawDevice.ReplaceLayers(s.homeLayerIds, layers)
	s.lastTimeText = timeText
	s.lastMedia = media
}

// showHeadsetNotif pops a headset state icon in the top right corner for a
// few seconds. A new notification replaces a pending one.
func (s *ServerApp) showHeadsetNotif(connected bool) {
	if !s.ShowNotifications || s.idle {
		return
	}

	img := images.HeadsetDisconnectedImage
	if connected {
		img = images.HeadsetConnectedImage
	}
	bm := bitmap.FromImage(img, 0x80)

	if s.notifHideTimer != nil {
		s.notifHideTimer.Stop()
	}

	var removeIds []draw.LayerID
	if s.notifLayerId != draw.NoLayer {
		removeIds = []draw.LayerID{s.notifLayerId}
	}
	width, _ := s.drawDevice.Size()
	ids := s.drawDevice.ReplaceLayers(removeIds, []draw.Layer{
		draw.ImageLayer{Bitmap: bm, X: width - bm.W - notifMargin, Y: notifMargin},
	})
	s.notifLayerId = ids[0]

	s.notifHideTimer = time.AfterFunc(notifDuration, func() {
		s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventNotifExpiredData{}}
	})
}
