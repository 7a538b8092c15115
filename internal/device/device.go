// Package device talks the vendor HID protocol of the SteelSeries Arctis
// Nova Pro dock: it discovers the two relevant HID sub-interfaces, pushes
// monochrome bitmaps to the OLED as feature reports and decodes the
// asynchronous status reports the dock sends back.
package device

import (
	"errors"
	"fmt"
	"io"

	"github.com/oledock/oledock/internal/hiddev"
)

const (
	// SteelSeries vendor id.
	vendorID = 0x1038

	// Both the OLED and the info role live on this USB interface.
	interfaceNbr = 4

	// The supported products all carry the same 128x64 panel.
	ScreenWidth  = 128
	ScreenHeight = 64

	// Report descriptor discriminant: byte 1 tells the two roles apart
	// when they are exposed as separate HID paths.
	oledDescriptorMark = 0xc0
	infoDescriptorMark = 0x00
)

// Products with the dock OLED.
var productIDs = []uint16{
	0x12cb, // Arctis Nova Pro Wired
	0x12cd, // Arctis Nova Pro Wired (Xbox)
	0x12e0, // Arctis Nova Pro Wireless
	0x12e5, // Arctis Nova Pro Wireless (Xbox)
}

// Device is an opened dock: one HID handle for OLED drawing and one for
// status reports.
type Device struct {
	backend hiddev.Backend
	oledDev hiddev.ReportDevice
	infoDev hiddev.ReportDevice

	Width  int
	Height int
}

// Connect opens the dock through the system HID layer.
func Connect() (*Device, error) {
	return ConnectWith(hiddev.System())
}

// ConnectWith opens the dock through the given backend.
func ConnectWith(backend hiddev.Backend) (*Device, error) {
	oledDev, infoDev, err := open(backend)
	if err != nil {
		return nil, err
	}
	return &Device{
		backend: backend,
		oledDev: oledDev,
		infoDev: infoDev,
		Width:   ScreenWidth,
		Height:  ScreenHeight,
	}, nil
}

// Size returns the panel dimensions in pixels.
func (d *Device) Size() (int, int) {
	return d.Width, d.Height
}

// Reconnect re-runs discovery and swaps in fresh handles. On error the
// device keeps its previous (possibly dead) handles so the caller can just
// retry later.
func (d *Device) Reconnect() error {
	oledDev, infoDev, err := open(d.backend)
	if err != nil {
		return err
	}
	d.close()
	d.oledDev = oledDev
	d.infoDev = infoDev
	return nil
}

// Close releases both HID handles.
func (d *Device) Close() error {
	return d.close()
}

func (d *Device) close() error {
	var firstErr error
	if d.oledDev != nil {
		if err := d.oledDev.Close(); err != nil {
			firstErr = err
		}
		d.oledDev = nil
	}
	if d.infoDev != nil {
		if err := d.infoDev.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.infoDev = nil
	}
	return firstErr
}

func matchingInterfaces(backend hiddev.Backend) ([]hiddev.Info, error) {
	var infos []hiddev.Info
	err := backend.Enumerate(vendorID, func(info hiddev.Info) error {
		if info.Interface != interfaceNbr {
			return nil
		}
		for _, pid := range productIDs {
			if info.ProductID == pid {
				infos = append(infos, info)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

func open(backend hiddev.Backend) (oledDev, infoDev hiddev.ReportDevice, err error) {
	infos, err := matchingInterfaces(backend)
	if err != nil {
		return nil, nil, err
	}

	// Exactly two sub-interfaces are expected: one OLED, one info.
	switch {
	case len(infos) == 0:
		return nil, nil, errors.New("no matching devices connected")
	case len(infos) < 2:
		return nil, nil, errors.New("too few matching devices connected")
	case len(infos) > 2:
		return nil, nil, errors.New("too many matching devices connected")
	}

	// On Linux both roles can sit behind the same hidraw path; open it once
	// per role instead of treating the pair as distinct interfaces.
	if infos[0].Path == infos[1].Path {
		oledDev, err = backend.OpenPath(infos[0].Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open device: %w", err)
		}
		infoDev, err = backend.OpenPath(infos[0].Path)
		if err != nil {
			oledDev.Close()
			return nil, nil, fmt.Errorf("open device: %w", err)
		}
		return oledDev, infoDev, nil
	}

	// Separate paths (typical on Windows): open both and assign roles by
	// their report descriptors.
	opened := make([]hiddev.ReportDevice, 0, 2)
	closeOpened := func() {
		for _, dev := range opened {
			dev.Close()
		}
	}
	for _, info := range infos {
		dev, openErr := backend.OpenPath(info.Path)
		if openErr != nil {
			closeOpened()
			return nil, nil, fmt.Errorf("open device: %w", openErr)
		}
		opened = append(opened, dev)
	}

	for _, dev := range opened {
		buf := make([]byte, hiddev.MaxReportDescriptorSize)
		n, descErr := dev.GetReportDescriptor(buf)
		if descErr != nil {
			closeOpened()
			return nil, nil, fmt.Errorf("get report descriptor: %w", descErr)
		}
		if n < 2 {
			closeOpened()
			return nil, nil, errors.New("short report descriptor")
		}
		switch buf[1] {
		case oledDescriptorMark:
			oledDev = dev
		case infoDescriptorMark:
			infoDev = dev
		}
	}
	if oledDev == nil {
		closeOpened()
		return nil, nil, errors.New("no OLED device found")
	}
	if infoDev == nil {
		closeOpened()
		return nil, nil, errors.New("no info device found")
	}
	return oledDev, infoDev, nil
}

// DumpDevices writes discovery info for every SteelSeries HID interface,
// for debugging new products.
func DumpDevices(w io.Writer) error {
	return DumpDevicesWith(w, hiddev.System())
}

func DumpDevicesWith(w io.Writer, backend hiddev.Backend) error {
	found := false
	err := backend.Enumerate(vendorID, func(info hiddev.Info) error {
		found = true
		fmt.Fprintln(w, "-----")
		fmt.Fprintf(w, "pid=%#04x\n", info.ProductID)
		fmt.Fprintf(w, "interface=%d\n", info.Interface)
		fmt.Fprintf(w, "path=%s\n", info.Path)
		dev, openErr := backend.OpenPath(info.Path)
		if openErr != nil {
			fmt.Fprintln(w, "opening device failed")
			return nil
		}
		defer dev.Close()
		buf := make([]byte, hiddev.MaxReportDescriptorSize)
		n, descErr := dev.GetReportDescriptor(buf)
		if descErr != nil {
			fmt.Fprintln(w, "getting report descriptor failed")
			return nil
		}
		head := n
		if head > 16 {
			head = 16
		}
		fmt.Fprintf(w, "report desc sz=%d, first %d bytes: % 02x\n", n, head, buf[:head])
		return nil
	})
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	if !found {
		fmt.Fprintln(w, "No devices.")
	}
	return nil
}
