package u2ftoken

// VerifyRegistration checks a registration's attestation signature
// against the signing string defined by the U2F spec:
//
//	0x00 || app_param || challenge_param || key_handle || user_public_key
//
// The attestation certificate is parsed fresh from reg.AttestationCert
// for this call and discarded afterward — the core engine never keeps
// a long-lived certificate handle around, only the caller-visible byte
// slices in RegisterResponse (see DESIGN.md's resolution of the
// cert-handle-lifetime open question). Authentication-response
// verification is not covered here: it additionally needs the counter
// and user-presence byte folded into the signed message, which is left
// to higher layers per spec.
func VerifyRegistration(verifier CertVerifier, reg *RegisterResponse, challengeParam, appParam []byte) error {
	if verifier == nil {
		verifier = StdlibCertVerifier{}
	}

	signingString := make([]byte, 0, 1+paramLen+paramLen+len(reg.KeyHandle)+pubKeyLen)
	signingString = append(signingString, 0x00)
	signingString = append(signingString, appParam...)
	signingString = append(signingString, challengeParam...)
	signingString = append(signingString, reg.KeyHandle...)
	signingString = append(signingString, reg.UserPublicKey[:]...)

	cert, _, err := verifier.ParseEndEntityCert(reg.AttestationCert)
	if err != nil {
		return newErr(KindWebPkiError, "parse attestation certificate: %v", err)
	}

	if err := verifier.VerifyECDSAP256SHA256(cert, signingString, reg.Signature); err != nil {
		return wrapErr(KindWebPkiError, err, "verify attestation signature")
	}

	return nil
}
