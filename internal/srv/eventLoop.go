package srv

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	dock "github.com/oledock/oledock/internal/device"
	"github.com/oledock/oledock/internal/draw"
	"github.com/oledock/oledock/internal/srv/event"
)

func (s *ServerApp) eventLoop() {
	refreshTicker := time.NewTicker(time.Second)
	defer refreshTicker.Stop()

	var apiEventChannel chan event.ApiEvent
	if s.apiDevice != nil {
		apiEventChannel = s.apiDevice.EventChannel()
	}

	for loop := true; loop; {
		select {
		case <-refreshTicker.C:
			s.refreshIdle()
			if !s.idle {
				s.refreshHomeLayers(time.Now())
			}
		case ev := <-s.internalEventChannel:
			switch ev.Data.(type) {
			case event.InternalEventNotifExpiredData:
				if s.notifLayerId != draw.NoLayer {
					s.drawDevice.RemoveLayer(s.notifLayerId)
					s.notifLayerId = draw.NoLayer
				}
			}
		case drawEv := <-s.drawDevice.EventChannel():
			switch data := drawEv.Data.(type) {
			case draw.DeviceDisconnectedData:
				logrus.Warnf("Dock disconnected")
				s.status.setDockConnected(false)
			case draw.DeviceReconnectedData:
				logrus.Infof("Dock reconnected")
				s.status.setDockConnected(true)
			case draw.DeviceEventData:
				s.handleDockEvent(data.Event)
			}
		case apiEv := <-apiEventChannel:
			apiEv.Result <- s.handleApiEvent(apiEv.Data)
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	if s.notifHideTimer != nil {
		s.notifHideTimer.Stop()
	}
	s.eventLoopDone <- true
}

func (s *ServerApp) handleDockEvent(ev dock.Event) {
	switch data := ev.Data.(type) {
	case dock.VolumeEventData:
		logrus.Debugf("Receive volume event: %d", data.Volume)
		s.status.setVolume(int(data.Volume))
	case dock.BatteryEventData:
		logrus.Debugf("Receive battery event: %d%% charging=%d", data.Headset, data.Charging)
		s.status.setBattery(int(data.Headset), data.Charging != 0)
	case dock.HeadsetConnectionEventData:
		logrus.Infof("Receive headset connection event: %v", data.Connected)
		s.status.setHeadsetConnected(data.Connected)
		s.showHeadsetNotif(data.Connected)
	}
}

func (s *ServerApp) handleApiEvent(data interface{}) error {
	switch data := data.(type) {
	case event.ApiEventShowTextData:
		s.apiTextLayerIds = s.drawDevice.ReplaceLayers(
			s.apiTextLayerIds,
			s.drawDevice.TextLayers(data.Text, data.X, data.Y))
		return nil
	case event.ApiEventClearTextData:
		s.drawDevice.RemoveLayers(s.apiTextLayerIds)
		s.apiTextLayerIds = nil
		return nil
	case event.ApiEventBrightnessData:
		if s.dockDevice == nil {
			return nil
		}
		err := s.dockDevice.SetBrightness(data.Brightness)
		if err == nil {
			s.Brightness = data.Brightness
			s.SaveParam()
		}
		return err
	case event.ApiEventPlayData:
		s.drawDevice.Play()
		return nil
	case event.ApiEventPauseData:
		s.drawDevice.Pause()
		return nil
	case event.ApiEventShiftModeData:
		if data.Mode != "off" && data.Mode != "simple" {
			return fmt.Errorf("unknown shift mode: %s", data.Mode)
		}
		s.OledShift = data.Mode
		s.drawDevice.SetShiftMode(s.ShiftMode())
		s.SaveParam()
		return nil
	}
	return fmt.Errorf("unknown api event")
}

func (s *ServerApp) refreshIdle() {
	if s.IdleTimeout <= 0 {
		return
	}
	idleTime, ok := s.idleProbe.IdleTime()
	if !ok {
		return
	}
	idle := idleTime >= time.Duration(s.IdleTimeout)*time.Second
	if idle == s.idle {
		return
	}
	s.idle = idle
	if idle {
		logrus.Infof("User idle, blanking screen")
		s.drawDevice.ClearLayers()
		s.homeLayerIds = nil
		s.apiTextLayerIds = nil
		s.notifLayerId = draw.NoLayer
		s.lastTimeText = ""
	} else {
		logrus.Infof("User active again")
		s.refreshHomeLayers(time.Now())
	}
}
