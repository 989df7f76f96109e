package u2ftoken

import "github.com/cmsd2/u2f/apdu"

const paramLen = 32
const pubKeyLen = 65
const registrationReservedByte = 0x05

// RegisterResponse is the parsed, immutable result of a successful
// Register call.
type RegisterResponse struct {
	UserPublicKey   [pubKeyLen]byte
	KeyHandle       []byte
	AttestationCert []byte
	Signature       []byte
}

// Register asks the authenticator to create a new key handle bound to
// app_param, proving user presence, and returns the parsed registration
// response. A ConditionsNotSatisfied status is surfaced as
// KindUserPresenceRequired: callers are expected to retry after a short
// pacing delay (~200ms) until the user touches the device or a fatal
// error occurs.
func (t *Token) Register(challengeParam, appParam []byte) (*RegisterResponse, error) {
	if err := requireLen(challengeParam, paramLen, KindInvalidChallengeParameter); err != nil {
		return nil, err
	}
	if err := requireLen(appParam, paramLen, KindInvalidApplicationParameter); err != nil {
		return nil, err
	}

	reqData := make([]byte, 0, 2*paramLen)
	reqData = append(reqData, challengeParam...)
	reqData = append(reqData, appParam...)

	resp, err := t.rawCommand(apdu.CommandAPDU{
		Ins:         apdu.InsRegister,
		P1:          AuthUserPresenceEnforce,
		P2:          0,
		RequestData: reqData,
		Le:          le256,
	})
	if err != nil {
		return nil, err
	}

	if resp.Status != apdu.StatusNoError {
		return nil, statusError(uint16(resp.Status))
	}

	return t.parseRegisterResponse(resp.Data)
}

func (t *Token) parseRegisterResponse(data []byte) (*RegisterResponse, error) {
	if len(data) < 1+pubKeyLen+1 {
		return nil, newErr(KindInvalidRegistrationResponse, "response too short: %d bytes", len(data))
	}

	if data[0] != registrationReservedByte {
		return nil, newErr(KindInvalidRegistrationResponse, "reserved byte is %#02x, want %#02x", data[0], registrationReservedByte)
	}
	data = data[1:]

	var pubKey [pubKeyLen]byte
	copy(pubKey[:], data[:pubKeyLen])
	data = data[pubKeyLen:]

	keyHandleLen := int(data[0])
	data = data[1:]

	// Strictly less than, not <=: the certificate and signature must
	// occupy at least one byte between them. See DESIGN.md's note on
	// the original's off-by-one here.
	if !(keyHandleLen < len(data)) {
		return nil, newErr(KindInvalidRegistrationResponse, "key handle length %d leaves no room for certificate and signature in %d remaining bytes", keyHandleLen, len(data))
	}

	keyHandle := append([]byte(nil), data[:keyHandleLen]...)
	data = data[keyHandleLen:]

	// The attestation certificate and signature are concatenated with
	// no explicit length for either; the certificate is delimited only
	// by its own DER structure, so we hand the whole remaining span to
	// the external cert parser and ask how many bytes it consumed.
	_, consumed, err := t.verifier().ParseEndEntityCert(data)
	if err != nil {
		return nil, newErr(KindInvalidRegistrationResponse, "parse attestation certificate: %v", err)
	}

	cert := append([]byte(nil), data[:consumed]...)
	signature := append([]byte(nil), data[consumed:]...)

	return &RegisterResponse{
		UserPublicKey:   pubKey,
		KeyHandle:       keyHandle,
		AttestationCert: cert,
		Signature:       signature,
	}, nil
}

func (t *Token) verifier() CertVerifier {
	if t.Verifier != nil {
		return t.Verifier
	}
	return StdlibCertVerifier{}
}
