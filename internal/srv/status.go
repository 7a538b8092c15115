package srv

import (
	"sync"

	"github.com/oledock/oledock/apimodel"
)

// serverStatus caches the latest dock telemetry for the API. Headset
// fields stay nil until the dock has reported them once.
type serverStatus struct {
	lock             sync.RWMutex
	dockConnected    bool
	headsetConnected *bool
	volume           *int
	batteryLevel     *int
	charging         *bool
}

func (st *serverStatus) setDockConnected(connected bool) {
	st.lock.Lock()
	defer st.lock.Unlock()
	st.dockConnected = connected
}

func (st *serverStatus) setHeadsetConnected(connected bool) {
	st.lock.Lock()
	defer st.lock.Unlock()
	st.headsetConnected = &connected
}

func (st *serverStatus) setVolume(volume int) {
	st.lock.Lock()
	defer st.lock.Unlock()
	st.volume = &volume
}

func (st *serverStatus) setBattery(level int, charging bool) {
	st.lock.Lock()
	defer st.lock.Unlock()
	st.batteryLevel = &level
	st.charging = &charging
}

func (st *serverStatus) snapshot() apimodel.Status {
	st.lock.RLock()
	defer st.lock.RUnlock()
	return apimodel.Status{
		DockConnected:    st.dockConnected,
		HeadsetConnected: st.headsetConnected,
		Volume:           st.volume,
		BatteryLevel:     st.batteryLevel,
		Charging:         st.charging,
	}
}
