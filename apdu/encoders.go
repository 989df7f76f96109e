package apdu

// ShortEncoder implements the ISO 7816-4 short request/response form:
// Nc and Ne each fit in a single byte, Ne=0 denoting 256.
type ShortEncoder struct{}

func (ShortEncoder) MaxRequestData() int  { return 255 }
func (ShortEncoder) MaxResponseData() int { return 256 }

func (e ShortEncoder) Encode(cmd CommandAPDU) ([]byte, error) {
	if err := validate(cmd, e.MaxRequestData(), e.MaxResponseData()); err != nil {
		return nil, err
	}

	out := []byte{0, byte(cmd.Ins), cmd.P1, cmd.P2}

	nc := len(cmd.RequestData)
	if nc != 0 {
		out = append(out, byte(nc))
		out = append(out, cmd.RequestData...)
	}

	if cmd.Le != nil {
		ne := *cmd.Le
		if ne == e.MaxResponseData() {
			ne = 0
		}
		out = append(out, byte(ne))
	}

	return out, nil
}

// ExtendedEncoderV1 is the extended-length form actually emitted by the
// U2F command engine against live devices: a 3-byte big-endian Lc is
// always present, even when there is no request data, and Le is validated but
// never written to the wire. This preserves on-wire compatibility with
// devices the U2FHID command engine was built against; see
// ExtendedEncoderV1_1 for the spec-conformant form.
type ExtendedEncoderV1 struct{}

func (ExtendedEncoderV1) MaxRequestData() int  { return 65535 }
func (ExtendedEncoderV1) MaxResponseData() int { return 65536 }

func (e ExtendedEncoderV1) Encode(cmd CommandAPDU) ([]byte, error) {
	if err := validate(cmd, e.MaxRequestData(), e.MaxResponseData()); err != nil {
		return nil, err
	}

	out := []byte{0, byte(cmd.Ins), cmd.P1, cmd.P2}

	nc := len(cmd.RequestData)
	out = append(out, byte(nc>>16), byte(nc>>8), byte(nc))
	out = append(out, cmd.RequestData...)

	return out, nil
}

// ExtendedEncoderV1_1 is the spec-conformant extended form: a 0x00
// marker byte followed by a 2-byte big-endian Lc (only when Nc > 0),
// then request data, then (if Le is present) a 2-byte big-endian Le,
// preceded by its own 0x00 marker when Nc was 0.
type ExtendedEncoderV1_1 struct{}

func (ExtendedEncoderV1_1) MaxRequestData() int  { return 65535 }
func (ExtendedEncoderV1_1) MaxResponseData() int { return 65536 }

func (e ExtendedEncoderV1_1) Encode(cmd CommandAPDU) ([]byte, error) {
	if err := validate(cmd, e.MaxRequestData(), e.MaxResponseData()); err != nil {
		return nil, err
	}

	out := []byte{0, byte(cmd.Ins), cmd.P1, cmd.P2}

	nc := len(cmd.RequestData)
	if nc != 0 {
		out = append(out, 0x00, byte(nc>>8), byte(nc))
		out = append(out, cmd.RequestData...)
	}

	if cmd.Le != nil {
		ne := *cmd.Le
		if ne == e.MaxResponseData() {
			ne = 0
		}
		if nc == 0 {
			out = append(out, 0x00)
		}
		out = append(out, byte(ne>>8), byte(ne))
	}

	return out, nil
}
