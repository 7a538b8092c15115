// Package hiddev is a thin boundary over the HID layer so the transport can
// be exercised against in-memory fakes. The real implementation wraps
// hidapi via github.com/sstallion/go-hid.
package hiddev

import (
	"github.com/sstallion/go-hid"
)

// MaxReportDescriptorSize is the hidapi limit for a HID report descriptor.
const MaxReportDescriptorSize = 4096

// Info describes one enumerated HID interface.
type Info struct {
	Path      string
	VendorID  uint16
	ProductID uint16
	Interface int
}

// ReportDevice is an opened HID interface capable of report I/O.
type ReportDevice interface {
	SendFeatureReport(p []byte) (int, error)
	GetReportDescriptor(buf []byte) (int, error)
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	SetNonblock(nonblock bool) error
	Close() error
}

// Backend enumerates and opens HID interfaces.
type Backend interface {
	Enumerate(vendorID uint16, visit func(info Info) error) error
	OpenPath(path string) (ReportDevice, error)
}

// System returns the hidapi-backed Backend.
func System() Backend {
	return systemBackend{}
}

type systemBackend struct{}

func (systemBackend) Enumerate(vendorID uint16, visit func(info Info) error) error {
	return hid.Enumerate(vendorID, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		return visit(Info{
			Path:      info.Path,
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Interface: info.InterfaceNbr,
		})
	})
}

func (systemBackend) OpenPath(path string) (ReportDevice, error) {
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, err
	}
	return dev, nil
}
