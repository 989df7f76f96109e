package u2ftoken

import "github.com/cmsd2/u2f/apdu"

// Version identifies the U2F protocol version an authenticator speaks.
type Version int

const (
	// V2 is the only version this engine recognizes.
	V2 Version = iota
)

func (v Version) String() string {
	switch v {
	case V2:
		return "U2F_V2"
	default:
		return "unknown"
	}
}

var versionBytesV2 = []byte("U2F_V2")

// GetVersion asks the authenticator for its U2F version string and
// requires it to be exactly "U2F_V2".
func (t *Token) GetVersion() (Version, error) {
	resp, err := t.rawCommand(apdu.CommandAPDU{
		Ins: apdu.InsVersion,
		Le:  le256,
	})
	if err != nil {
		return 0, err
	}

	if resp.Status != apdu.StatusNoError {
		return 0, statusError(uint16(resp.Status))
	}

	if !bytesEqual(resp.Data, versionBytesV2) {
		return 0, newErr(KindUnrecognisedVersion, "got %q", resp.Data)
	}

	return V2, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
