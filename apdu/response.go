package apdu

// ResponseAPDU is a decoded U2F response: the response data and the
// 16-bit status word.
type ResponseAPDU struct {
	Data   []byte
	Status Status
}

// Status is the 16-bit ISO 7816-4 status word of a response APDU.
type Status uint16

// Well-known status words used by U2F authenticators.
const (
	StatusNoError               Status = 0x9000
	StatusConditionsNotSatisfied Status = 0x6985
	StatusWrongData              Status = 0x6984
	StatusInsNotSupported         Status = 0x6D00
	StatusClaNotSupported         Status = 0x6E00
)

// Decode splits a raw response frame into response data and a status
// word. The final two bytes are always sw1, sw2; anything preceding
// them is response data. Frames shorter than 2 bytes are rejected.
func Decode(frame []byte) (ResponseAPDU, error) {
	if len(frame) < 2 {
		return ResponseAPDU{}, newErr(KindResponseFrameTooShort, "%d byte(s)", len(frame))
	}

	n := len(frame)
	data := frame[:n-2]
	sw1, sw2 := frame[n-2], frame[n-1]

	return ResponseAPDU{
		Data:   append([]byte{}, data...),
		Status: Status(uint16(sw1)<<8 | uint16(sw2)),
	}, nil
}
