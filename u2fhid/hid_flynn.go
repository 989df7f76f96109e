package u2fhid

import (
	"time"

	"github.com/flynn/hid"
)

// FlynnTransport adapts github.com/flynn/hid as a Transport. It is the
// concrete transport the example CLIs use to talk to real devices; the
// rest of this package never imports flynn/hid directly so that tests
// can swap in a mock Transport instead.
type FlynnTransport struct{}

// Enumerate lists every HID device flynn/hid can see.
func (FlynnTransport) Enumerate() ([]DeviceInfo, error) {
	devices, err := hid.Devices()
	if err != nil {
		return nil, err
	}

	out := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, DeviceInfo{
			VendorID:  d.VendorID,
			ProductID: d.ProductID,
			Path:      d.Path,
			UsagePage: d.UsagePage,
			Usage:     d.Usage,
		})
	}
	return out, nil
}

// Open opens the device at path, returning an adapter satisfying
// Handle.
func (FlynnTransport) Open(path string) (Handle, error) {
	for _, d := range mustListFlynnDevices() {
		if d.Path != path {
			continue
		}
		dev, err := d.Open()
		if err != nil {
			return nil, err
		}
		return flynnHandle{dev: dev}, nil
	}
	return nil, &Error{Kind: KindTransport, Detail: "no device at path " + path}
}

func mustListFlynnDevices() []*hid.DeviceInfo {
	devices, err := hid.Devices()
	if err != nil {
		return nil
	}
	return devices
}

// flynnHandle adapts a flynn/hid Device to Handle.
type flynnHandle struct {
	dev hid.Device
}

func (h flynnHandle) Write(report []byte) error {
	return h.dev.Write(report)
}

func (h flynnHandle) ReadWithTimeout(buf []byte, timeout time.Duration) (int, error) {
	select {
	case data, ok := <-h.dev.ReadCh():
		if !ok {
			return 0, &Error{Kind: KindTransport, Detail: "device closed"}
		}
		n := copy(buf, data)
		return n, nil
	case <-time.After(timeout):
		return 0, &Error{Kind: KindTransport, Detail: "read timed out"}
	}
}

func (h flynnHandle) Close() error {
	h.dev.Close()
	return nil
}
