package u2ftoken

import (
	"encoding/binary"

	"github.com/cmsd2/u2f/apdu"
)

// AuthenticateResponse is the parsed, immutable result of a successful
// Authenticate call.
type AuthenticateResponse struct {
	Counter   uint32
	Signature []byte
}

// Authenticate asks the authenticator to sign challengeParam/appParam
// with the credential identified by keyHandle, proving user presence.
// As with Register, ConditionsNotSatisfied surfaces as
// KindUserPresenceRequired for the caller to retry.
func (t *Token) Authenticate(challengeParam, appParam, keyHandle []byte) (*AuthenticateResponse, error) {
	if err := requireLen(challengeParam, paramLen, KindInvalidChallengeParameter); err != nil {
		return nil, err
	}
	if err := requireLen(appParam, paramLen, KindInvalidApplicationParameter); err != nil {
		return nil, err
	}
	if len(keyHandle) >= 256 {
		return nil, newErr(KindKeyHandleTooLong, "%d bytes", len(keyHandle))
	}

	reqData := make([]byte, 0, 2*paramLen+1+len(keyHandle))
	reqData = append(reqData, challengeParam...)
	reqData = append(reqData, appParam...)
	reqData = append(reqData, byte(len(keyHandle)))
	reqData = append(reqData, keyHandle...)

	resp, err := t.rawCommand(apdu.CommandAPDU{
		Ins:         apdu.InsAuthenticate,
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

	return parseAuthenticateResponse(resp.Data)
}

// CheckAuthenticate performs a "check-only" authenticate call
// (TEST_USER_PRESENCE_TEST_ONLY, no consume) to test whether keyHandle
// is owned by this authenticator for the given application, without
// requiring user interaction or producing a usable signature. It
// succeeds (returns nil) iff the device recognizes the key handle.
func (t *Token) CheckAuthenticate(challengeParam, appParam, keyHandle []byte) error {
	if err := requireLen(challengeParam, paramLen, KindInvalidChallengeParameter); err != nil {
		return err
	}
	if err := requireLen(appParam, paramLen, KindInvalidApplicationParameter); err != nil {
		return err
	}
	if len(keyHandle) >= 256 {
		return newErr(KindKeyHandleTooLong, "%d bytes", len(keyHandle))
	}

	reqData := make([]byte, 0, 2*paramLen+1+len(keyHandle))
	reqData = append(reqData, challengeParam...)
	reqData = append(reqData, appParam...)
	reqData = append(reqData, byte(len(keyHandle)))
	reqData = append(reqData, keyHandle...)

	resp, err := t.rawCommand(apdu.CommandAPDU{
		Ins:         apdu.InsAuthenticate,
		P1:          AuthUserPresenceTestOnly,
		P2:          0,
		RequestData: reqData,
		Le:          le256,
	})
	if err != nil {
		return err
	}

	if resp.Status != apdu.StatusNoError {
		return statusError(uint16(resp.Status))
	}
	return nil
}

func parseAuthenticateResponse(data []byte) (*AuthenticateResponse, error) {
	const minLen = 1 + 4
	if len(data) < minLen {
		return nil, newErr(KindInvalidRegistrationResponse, "authenticate response too short: %d bytes", len(data))
	}

	// data[0] is the user-presence byte, discarded.
	counter := binary.BigEndian.Uint32(data[1:5])
	signature := append([]byte(nil), data[5:]...)

	return &AuthenticateResponse{
		Counter:   counter,
		Signature: signature,
	}, nil
}
