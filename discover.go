package u2f

import "github.com/cmsd2/u2f/u2fhid"

// Devices lists every connected U2F HID authenticator visible through
// transport, applying the (usage_page, usage) == (0xF1D0, 0x0001)
// device filter described in SPEC_FULL.md §2.
func Devices(transport u2fhid.Transport) ([]u2fhid.DeviceInfo, error) {
	return u2fhid.EnumerateFIDO(transport)
}

// OpenDevice opens info via transport and wraps the result as a
// Channel. Callers still need to call Channel.Init before issuing any
// other command.
func OpenDevice(transport u2fhid.Transport, info u2fhid.DeviceInfo) (*Channel, error) {
	handle, err := transport.Open(info.Path)
	if err != nil {
		return nil, err
	}
	return Open(handle), nil
}
