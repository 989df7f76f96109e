package u2ftoken

import "encoding/json"

// registerResponseJSON is the on-the-wire JSON shape for
// RegisterResponse: every byte field base64-encoded, matching how the
// original CLI examples serialize registration/authentication
// responses to disk. A plain struct tag can't do this for the fixed
// [65]byte public key (encoding/json only base64-encodes slices, not
// arrays), so RegisterResponse implements json.Marshaler/Unmarshaler
// directly instead.
type registerResponseJSON struct {
	UserPublicKey   []byte `json:"userPublicKey"`
	KeyHandle       []byte `json:"keyHandle"`
	AttestationCert []byte `json:"attestationCert"`
	Signature       []byte `json:"signature"`
}

func (r RegisterResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(registerResponseJSON{
		UserPublicKey:   r.UserPublicKey[:],
		KeyHandle:       r.KeyHandle,
		AttestationCert: r.AttestationCert,
		Signature:       r.Signature,
	})
}

func (r *RegisterResponse) UnmarshalJSON(data []byte) error {
	var aux registerResponseJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.UserPublicKey) != pubKeyLen {
		return newErr(KindInvalidRegistrationResponse, "userPublicKey must be %d bytes, got %d", pubKeyLen, len(aux.UserPublicKey))
	}
	copy(r.UserPublicKey[:], aux.UserPublicKey)
	r.KeyHandle = aux.KeyHandle
	r.AttestationCert = aux.AttestationCert
	r.Signature = aux.Signature
	return nil
}
