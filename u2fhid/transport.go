package u2fhid

import "time"

// FIDOUsagePage and FIDOUsage identify a U2F HID device: it qualifies
// iff its reported usage page and usage match these values exactly.
const (
	FIDOUsagePage uint16 = 0xF1D0
	FIDOUsage     uint16 = 0x0001
)

// DeviceInfo describes an enumerated HID device, as returned by the
// external HID transport collaborator.
type DeviceInfo struct {
	VendorID  uint16
	ProductID uint16
	Path      string
	UsagePage uint16
	Usage     uint16
}

// IsFIDO reports whether this device's usage page/usage identify it as
// a U2F HID authenticator.
func (d DeviceInfo) IsFIDO() bool {
	return d.UsagePage == FIDOUsagePage && d.Usage == FIDOUsage
}

// Handle is the open HID connection to a single device. Implementations
// are expected to write/read whole, fixed-size HID reports.
type Handle interface {
	// Write writes exactly one HID output report; the first byte is
	// the report id.
	Write(report []byte) error
	// ReadWithTimeout blocks up to timeout waiting for one HID input
	// report, writing it into buf and returning the number of bytes
	// read.
	ReadWithTimeout(buf []byte, timeout time.Duration) (int, error)
	// Close releases the underlying device handle.
	Close() error
}

// Transport is the external HID collaborator this package consumes. It
// is deliberately narrow: enumeration, opening, and raw read/write —
// everything domain-specific (framing, channels, commands) lives in
// this package instead.
type Transport interface {
	// Enumerate lists every connected HID device, FIDO or not; callers
	// filter with DeviceInfo.IsFIDO.
	Enumerate() ([]DeviceInfo, error)
	// Open opens the device at path for exclusive read/write access.
	Open(path string) (Handle, error)
}

// EnumerateFIDO lists only devices that qualify as U2F HID
// authenticators per DeviceInfo.IsFIDO.
func EnumerateFIDO(t Transport) ([]DeviceInfo, error) {
	all, err := t.Enumerate()
	if err != nil {
		return nil, wrapErr(KindTransport, err, "enumerate")
	}

	var out []DeviceInfo
	for _, d := range all {
		if d.IsFIDO() {
			out = append(out, d)
		}
	}
	return out, nil
}
