package device

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oledock/oledock/internal/bitmap"
	"github.com/oledock/oledock/internal/hiddev"
)

type fakeDevice struct {
	desc     []byte
	features [][]byte
	writes   [][]byte
	reads    [][]byte
	sendErr  error
	readErr  error
	closed   int
}

func (f *fakeDevice) SendFeatureReport(p []byte) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.features = append(f.features, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeDevice) GetReportDescriptor(buf []byte) (int, error) {
	return copy(buf, f.desc), nil
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeDevice) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.reads) == 0 {
		return 0, nil
	}
	n := copy(p, f.reads[0])
	f.reads = f.reads[1:]
	return n, nil
}

func (f *fakeDevice) SetNonblock(bool) error { return nil }

func (f *fakeDevice) Close() error {
	f.closed++
	return nil
}

type fakeBackend struct {
	infos   []hiddev.Info
	devices map[string]*fakeDevice
}

func (b *fakeBackend) Enumerate(vendorID uint16, visit func(info hiddev.Info) error) error {
	for _, info := range b.infos {
		if info.VendorID != vendorID {
			continue
		}
		if err := visit(info); err != nil {
			return err
		}
	}
	return nil
}

func (b *fakeBackend) OpenPath(path string) (hiddev.ReportDevice, error) {
	dev, ok := b.devices[path]
	if !ok {
		return nil, fmt.Errorf("no device at %s", path)
	}
	return dev, nil
}

func dockInfo(path string) hiddev.Info {
	return hiddev.Info{Path: path, VendorID: 0x1038, ProductID: 0x12e0, Interface: 4}
}

func twoRoleBackend() *fakeBackend {
	return &fakeBackend{
		infos: []hiddev.Info{dockInfo("info-role"), dockInfo("oled-role")},
		devices: map[string]*fakeDevice{
			"oled-role": {desc: []byte{0x05, 0xc0, 0x00}},
			"info-role": {desc: []byte{0x05, 0x00, 0x00}},
		},
	}
}

func TestConnectNoDevices(t *testing.T) {
	_, err := ConnectWith(&fakeBackend{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching devices")
}

func TestConnectTooFew(t *testing.T) {
	backend := &fakeBackend{
		infos:   []hiddev.Info{dockInfo("a")},
		devices: map[string]*fakeDevice{"a": {}},
	}
	_, err := ConnectWith(backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too few")
}

func TestConnectTooMany(t *testing.T) {
	backend := &fakeBackend{
		infos: []hiddev.Info{dockInfo("a"), dockInfo("b"), dockInfo("c")},
	}
	_, err := ConnectWith(backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many")
}

func TestConnectFiltersVendorProductInterface(t *testing.T) {
	backend := &fakeBackend{
		infos: []hiddev.Info{
			{Path: "x", VendorID: 0x1038, ProductID: 0x12e0, Interface: 3},
			{Path: "y", VendorID: 0x1038, ProductID: 0xbeef, Interface: 4},
			{Path: "z", VendorID: 0xdead, ProductID: 0x12e0, Interface: 4},
		},
	}
	_, err := ConnectWith(backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching devices")
}

func TestConnectAssignsRolesByDescriptor(t *testing.T) {
	// Role assignment must not depend on enumeration order.
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)
	assert.Equal(t, 128, dev.Width)
	assert.Equal(t, 64, dev.Height)

	require.NoError(t, dev.Draw(bitmap.New(8, 8, true), 0, 0))
	assert.NotEmpty(t, backend.devices["oled-role"].features)
	assert.Empty(t, backend.devices["info-role"].features)
}

func TestConnectBothSameRole(t *testing.T) {
	backend := twoRoleBackend()
	backend.devices["info-role"].desc = []byte{0x05, 0xc0, 0x00}
	_, err := ConnectWith(backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no info device")

	backend.devices["info-role"].desc = []byte{0x05, 0x00, 0x00}
	backend.devices["oled-role"].desc = []byte{0x05, 0x00, 0x00}
	_, err = ConnectWith(backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no OLED device")
}

func TestConnectSharedPath(t *testing.T) {
	// On Linux both roles can share a single hidraw path.
	shared := &fakeDevice{}
	backend := &fakeBackend{
		infos:   []hiddev.Info{dockInfo("shared"), dockInfo("shared")},
		devices: map[string]*fakeDevice{"shared": shared},
	}
	dev, err := ConnectWith(backend)
	require.NoError(t, err)
	require.NoError(t, dev.Draw(bitmap.New(4, 4, true), 0, 0))
	assert.NotEmpty(t, shared.features)
}

func TestReconnectSwapsHandles(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	old := backend.devices["oled-role"]
	fresh := &fakeDevice{desc: []byte{0x05, 0xc0, 0x00}}
	backend.devices["oled-role"] = fresh
	require.NoError(t, dev.Reconnect())
	assert.Equal(t, 1, old.closed)

	require.NoError(t, dev.Draw(bitmap.New(4, 4, true), 0, 0))
	assert.NotEmpty(t, fresh.features)
	assert.Empty(t, old.features)
}

func TestReconnectFailureKeepsDevice(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	backend.infos = nil
	require.Error(t, dev.Reconnect())
	// Old handles were not closed away.
	require.NoError(t, dev.Draw(bitmap.New(4, 4, true), 0, 0))
}

func TestDrawSplitsWideBitmaps(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	require.NoError(t, dev.Draw(bitmap.New(128, 64, true), 0, 0))
	oled := backend.devices["oled-role"]
	require.Len(t, oled.features, 2)
	for i, report := range oled.features {
		assert.Len(t, report, 1024)
		assert.Equal(t, byte(0x06), report[0])
		assert.Equal(t, byte(0x93), report[1])
		assert.Equal(t, byte(64*i), report[2], "chunks must go left to right")
		assert.Equal(t, byte(64), report[4])
		assert.Equal(t, byte(64), report[5])
	}
}

func TestDrawFullyOffscreen(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	require.NoError(t, dev.Draw(bitmap.New(16, 16, true), -32, 0))
	require.NoError(t, dev.Draw(bitmap.New(16, 16, true), 0, 200))
	assert.Empty(t, backend.devices["oled-role"].features)
}

func TestDrawAbortsOnError(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	backend.devices["oled-role"].sendErr = errors.New("unplugged")
	err = dev.Draw(bitmap.New(128, 64, true), 0, 0)
	require.Error(t, err)
	assert.Empty(t, backend.devices["oled-role"].features)
}

func TestSetBrightness(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	assert.Error(t, dev.SetBrightness(0))
	assert.Error(t, dev.SetBrightness(11))
	require.NoError(t, dev.SetBrightness(5))

	oled := backend.devices["oled-role"]
	require.Len(t, oled.writes, 1)
	assert.Equal(t, byte(0x06), oled.writes[0][0])
	assert.Equal(t, byte(0x85), oled.writes[0][1])
	assert.Equal(t, byte(5), oled.writes[0][2])
}

func TestReturnToUI(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	require.NoError(t, dev.ReturnToUI())
	oled := backend.devices["oled-role"]
	require.Len(t, oled.writes, 1)
	assert.Equal(t, byte(0x95), oled.writes[0][1])
}

func statusReport(b ...byte) []byte {
	report := make([]byte, 64)
	copy(report, b)
	return report
}

func TestEventsDecodesStatusReports(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	info := backend.devices["info-role"]
	info.reads = [][]byte{
		statusReport(7, 0x25, 0x30),             // volume 8
		statusReport(7, 0xb5, 0, 0, 8),          // headset connected
		statusReport(7, 0xb5, 0, 0, 3),          // headset disconnected
		statusReport(7, 0xb7, 42, 1),            // battery
		statusReport(7, 0x99, 1, 2, 3),          // undocumented: dropped
		statusReport(3, 0x25, 0x30),             // wrong marker: dropped
	}

	events, err := dev.Events()
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, VolumeEventData{Volume: 8}, events[0].Data)
	assert.Equal(t, HeadsetConnectionEventData{Connected: true}, events[1].Data)
	assert.Equal(t, HeadsetConnectionEventData{Connected: false}, events[2].Data)
	assert.Equal(t, BatteryEventData{Headset: 42, Charging: 1}, events[3].Data)
}

func TestEventsReadError(t *testing.T) {
	backend := twoRoleBackend()
	dev, err := ConnectWith(backend)
	require.NoError(t, err)

	backend.devices["info-role"].readErr = errors.New("unplugged")
	_, err = dev.Events()
	require.Error(t, err)
}

func TestDumpDevices(t *testing.T) {
	backend := twoRoleBackend()
	var buf bytes.Buffer
	require.NoError(t, DumpDevicesWith(&buf, backend))
	assert.Contains(t, buf.String(), "pid=0x12e0")

	buf.Reset()
	require.NoError(t, DumpDevicesWith(&buf, &fakeBackend{}))
	assert.Contains(t, buf.String(), "No devices.")
}
