// Package apdu implements ISO 7816-4 command/response APDU encoding and
// decoding for the U2F command set.
package apdu

import "fmt"

// Kind identifies the category of an apdu-layer error.
type Kind int

const (
	// KindResponseFrameTooShort means a response frame had fewer than
	// the 2 bytes needed to hold a status word.
	KindResponseFrameTooShort Kind = iota
	// KindRequestDataTooLong means Nc exceeded the encoder's
	// max_request_data.
	KindRequestDataTooLong
	// KindExpectedResponseDataTooLong means Le exceeded the encoder's
	// max_response_data.
	KindExpectedResponseDataTooLong
	// KindExpectedZeroResponseData means Le was explicitly zero, which
	// every encoder rejects (use nil Le to mean "no response data
	// expected" instead).
	KindExpectedZeroResponseData
)

func (k Kind) String() string {
	switch k {
	case KindResponseFrameTooShort:
		return "response frame too short"
	case KindRequestDataTooLong:
		return "request data too long"
	case KindExpectedResponseDataTooLong:
		return "expected response data too long"
	case KindExpectedZeroResponseData:
		return "expected zero response data"
	default:
		return "unknown apdu error"
	}
}

// Error is the error type returned by this package. Callers that need to
// distinguish error kinds should use errors.As and inspect Kind.
type Error struct {
	Kind Kind
	// Detail carries kind-specific context (e.g. the offending length).
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func newErr(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Detail: fmt.Sprintf(format, args...)}
}
