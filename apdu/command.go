package apdu

// Instruction is the ISO 7816-4 INS byte of a U2F command APDU.
type Instruction byte

const (
	// InsRegister registers a new key handle with a relying party.
	InsRegister Instruction = 0x01
	// InsAuthenticate signs a challenge with a previously registered
	// key handle.
	InsAuthenticate Instruction = 0x02
	// InsVersion asks the authenticator for its U2F version string.
	InsVersion Instruction = 0x03
)

// CommandAPDU is a U2F command APDU prior to wire encoding. CLA is
// always 0 for U2F and is not exposed as a field.
type CommandAPDU struct {
	Ins Instruction
	P1  byte
	P2  byte
	// RequestData is Nc bytes of command data.
	RequestData []byte
	// Le, if non-nil, is the expected response length Ne. Must be in
	// [1, max_response_data(encoder)]; zero is rejected outright.
	Le *int
}

// Encoder turns a CommandAPDU into its wire bytes for one of the ISO
// 7816-4 request forms.
type Encoder interface {
	// Encode validates cmd against the encoder's limits and appends its
	// wire bytes.
	Encode(cmd CommandAPDU) ([]byte, error)
	// MaxRequestData is the largest Nc this encoder can carry.
	MaxRequestData() int
	// MaxResponseData is the largest Le this encoder can carry.
	MaxResponseData() int
}

func validate(cmd CommandAPDU, maxReq, maxResp int) error {
	if len(cmd.RequestData) > maxReq {
		return newErr(KindRequestDataTooLong, "%d > max %d", len(cmd.RequestData), maxReq)
	}
	if cmd.Le != nil {
		if *cmd.Le == 0 {
			return newErr(KindExpectedZeroResponseData, "le must not be 0")
		}
		if *cmd.Le > maxResp {
			return newErr(KindExpectedResponseDataTooLong, "%d > max %d", *cmd.Le, maxResp)
		}
	}
	return nil
}
