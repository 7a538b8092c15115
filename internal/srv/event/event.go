package event

// Internal timers
type InternalEvent struct {
	Data interface{}
}

type InternalEventNotifExpiredData struct{}
type InternalEventIdleExpiredData struct{}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventShowTextData struct {
	Text string
	X    *int
	Y    *int
}

type ApiEventClearTextData struct{}

type ApiEventBrightnessData struct {
	Brightness int
}

type ApiEventPlayData struct{}

type ApiEventPauseData struct{}

type ApiEventShiftModeData struct {
	Mode string
}
