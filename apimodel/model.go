package apimodel

// Status is the dock and headset state snapshot served by the API.
// Headset fields are nil until the dock has reported them.
type Status struct {
	DockConnected    bool  `json:"dock_connected"`
	HeadsetConnected *bool `json:"headset_connected"`
	Volume           *int  `json:"volume"`
	BatteryLevel     *int  `json:"battery_level"`
	Charging         *bool `json:"charging"`
}

type TextRequest struct {
	Text string `json:"text"`
}
