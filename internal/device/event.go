package device

import (
	"fmt"
)

const (
	eventReportSize = 64

	// Status reports start with this marker byte.
	eventMarker = 7

	eventVolume            = 0x25
	eventHeadsetConnection = 0xb5
	eventBattery           = 0xb7

	// Volume arrives as an attenuation value below this base.
	volumeBase = 0x38

	headsetConnectedSentinel = 8
)

// Event is a decoded status report from the dock.
type Event struct {
	Data interface{}
}

type VolumeEventData struct {
	Volume uint8
}

type BatteryEventData struct {
	Headset  uint8
	Charging uint8
}

type HeadsetConnectionEventData struct {
	Connected bool
}

// parseEvent decodes one raw status report. The firmware emits more frame
// kinds than are documented; unrecognized ones are dropped, not errors.
func parseEvent(buf []byte) (Event, bool) {
	if len(buf) < 5 || buf[0] != eventMarker {
		return Event{}, false
	}
	switch buf[1] {
	case eventVolume:
		var volume uint8
		if buf[2] < volumeBase {
			volume = volumeBase - buf[2]
		}
		return Event{Data: VolumeEventData{Volume: volume}}, true
	case eventHeadsetConnection:
		return Event{Data: HeadsetConnectionEventData{Connected: buf[4] == headsetConnectedSentinel}}, true
	case eventBattery:
		return Event{Data: BatteryEventData{Headset: buf[2], Charging: buf[3]}}, true
	}
	return Event{}, false
}

// PollEvent blocks until the dock sends a status report. ok is false when
// the report did not decode to a known event.
func (d *Device) PollEvent() (ev Event, ok bool, err error) {
	if err := d.infoDev.SetNonblock(false); err != nil {
		return Event{}, false, fmt.Errorf("set blocking mode: %w", err)
	}
	buf := make([]byte, eventReportSize)
	if _, err := d.infoDev.Read(buf); err != nil {
		return Event{}, false, fmt.Errorf("read status report: %w", err)
	}
	ev, ok = parseEvent(buf)
	return ev, ok, nil
}

// Events drains all pending status reports without blocking.
func (d *Device) Events() ([]Event, error) {
	if err := d.infoDev.SetNonblock(true); err != nil {
		return nil, fmt.Errorf("set non-blocking mode: %w", err)
	}
	var events []Event
	for {
		buf := make([]byte, eventReportSize)
		n, err := d.infoDev.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read status report: %w", err)
		}
		if n == 0 {
			return events, nil
		}
		if ev, ok := parseEvent(buf[:n]); ok {
			events = append(events, ev)
		}
	}
}
