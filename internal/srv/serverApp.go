package srv

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	dock "github.com/oledock/oledock/internal/device"
	"github.com/oledock/oledock/internal/draw"
	"github.com/oledock/oledock/internal/srv/config"
	"github.com/oledock/oledock/internal/srv/device"
	"github.com/oledock/oledock/internal/srv/event"
	"github.com/oledock/oledock/internal/srv/probe"
	"github.com/oledock/oledock/internal/version"
)

type ServerApp struct {
	*config.ServerConfig
	drawDevice *draw.DrawDevice
	dockDevice *dock.Device
	simScreen  *device.SimScreen
	apiDevice  *device.Api

	mediaProbe probe.MediaProbe
	idleProbe  probe.IdleProbe

	status *serverStatus

	// Event loop state
	homeLayerIds    []draw.LayerID
	apiTextLayerIds []draw.LayerID
	notifLayerId    draw.LayerID
	lastTimeText    string
	lastMedia       probe.MediaInfo
	idle            bool
	notifHideTimer  *time.Timer

	internalEventChannel chan event.InternalEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

func NewServerApp(configDir string, debugMode bool, simulationMode bool) *ServerApp {

	logrus.Debugf("Creation of oledock server %s ...", version.AppVersion.String())

	app := &ServerApp{
		internalEventChannel: make(chan event.InternalEvent),
		eventLoopAskDone:     make(chan bool),
		eventLoopDone:        make(chan bool),
		ServerConfig:         config.NewServerConfig(configDir, debugMode, simulationMode),
		mediaProbe:           probe.NoMedia{},
		idleProbe:            probe.NoIdle{},
		status:               &serverStatus{dockConnected: true},
	}

	var screen draw.Screen
	if app.SimulationMode {
		app.simScreen = device.NewSimScreen()
		screen = app.simScreen
	} else {
		dockDevice, err := dock.Connect()
		if err != nil {
			logrus.Fatalf("Unable to connect to the dock: %v", err)
		}
		if err = dockDevice.SetBrightness(app.Brightness); err != nil {
			logrus.Warnf("Unable to set brightness: %v", err)
		}
		app.dockDevice = dockDevice
		screen = dockDevice
	}

	// The render thread owns the screen from here on.
	app.drawDevice = draw.NewDrawDevice(screen, app.Fps)

	if app.ApiParam.Enabled {
		app.apiDevice = device.NewApi(app.ServerConfig, app.status.snapshot)
	}

	logrus.Debugln("Server created")

	return app
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting oledock server ...")

	s.drawDevice.SetShiftMode(s.ShiftMode())
	s.refreshHomeLayers(time.Now())
	s.drawDevice.Play()

	// Start event loop
	go s.eventLoop()

	// Start api device
	if s.apiDevice != nil {
		s.apiDevice.Start()
	}
}

func (s *ServerApp) Stop() {
	logrus.Printf("Stopping oledock server ...")

	// Stop api
	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Stop render thread and take the screen back
	s.drawDevice.ClearLayers()
	screen := s.drawDevice.Stop()

	if dockDevice, ok := screen.(*dock.Device); ok {
		if err := dockDevice.ReturnToUI(); err != nil {
			logrus.Warnf("Unable to hand the screen back: %v", err)
		}
		dockDevice.Close()
	}
	if s.simScreen != nil {
		s.simScreen.Close()
	}

	logrus.Printf("Server stopped")

	os.Exit(0)
}
