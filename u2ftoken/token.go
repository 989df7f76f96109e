package u2ftoken

import (
	"github.com/cmsd2/u2f/apdu"
	"github.com/cmsd2/u2f/u2fhid"
)

// AuthUserPresence is the public P1 vocabulary for TEST-USER-PRESENCE
// flags, per the U2F raw message spec.
const (
	AuthUserPresenceTestOnly  byte = 1 << 2 // 0x04
	AuthUserPresenceConsume   byte = 1 << 1 // 0x02
	AuthUserPresenceRequired  byte = 1 << 0 // 0x01
	// AuthUserPresenceEnforce is the P1 value used for live
	// Register/Authenticate calls: require and consume user presence.
	AuthUserPresenceEnforce = AuthUserPresenceRequired | AuthUserPresenceConsume
)

// le256 is the LE value that asks for up to 256 bytes of response
// data; every U2F command uses it.
var le256 = func() *int { v := 256; return &v }()

// Token drives the U2F command set (Register, Authenticate,
// GetVersion) over an initialized u2fhid.Device.
type Token struct {
	Device *u2fhid.Device

	// Encoder selects the APDU wire form used to encode outgoing
	// command APDUs. Defaults to apdu.ExtendedEncoderV1, matching the
	// on-wire behavior of real devices; callers that need
	// spec-conformant LE emission can set apdu.ExtendedEncoderV1_1{}.
	Encoder apdu.Encoder

	// Verifier is the crypto collaborator Register uses to find where the
	// attestation certificate ends in a registration response.
	// VerifyRegistration takes its verifier as a separate argument.
	Verifier CertVerifier
}

// NewToken wraps an initialized Device as a Token using the default
// encoder and a stdlib-backed CertVerifier.
func NewToken(dev *u2fhid.Device) *Token {
	return &Token{
		Device:   dev,
		Encoder:  apdu.ExtendedEncoderV1{},
		Verifier: StdlibCertVerifier{},
	}
}

func (t *Token) encoder() apdu.Encoder {
	if t.Encoder != nil {
		return t.Encoder
	}
	return apdu.ExtendedEncoderV1{}
}

// rawCommand encodes cmd, round-trips it through the device's Msg
// command, and decodes the response APDU.
func (t *Token) rawCommand(cmd apdu.CommandAPDU) (apdu.ResponseAPDU, error) {
	reqBytes, err := t.encoder().Encode(cmd)
	if err != nil {
		return apdu.ResponseAPDU{}, err
	}

	respBytes, err := t.Device.Command(u2fhid.CmdMsg, reqBytes)
	if err != nil {
		return apdu.ResponseAPDU{}, wrapErr(KindFramer, err, "msg command")
	}

	resp, err := apdu.Decode(respBytes)
	if err != nil {
		return apdu.ResponseAPDU{}, wrapErr(KindFramer, err, "decode response apdu")
	}

	return resp, nil
}

func requireLen(b []byte, n int, kind Kind) error {
	if len(b) != n {
		return newErr(kind, "got %d bytes, want %d", len(b), n)
	}
	return nil
}
