package apdu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmsd2/u2f/apdu"
)

func le(n int) *int { return &n }

func TestShortEncoderGetVersion(t *testing.T) {
	out, err := apdu.ShortEncoder{}.Encode(apdu.CommandAPDU{
		Ins: apdu.InsVersion,
		Le:  le(256),
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0, byte(apdu.InsVersion), 0, 0, 0}, out)
}

func TestExtendedEncoderV1GetVersion(t *testing.T) {
	out, err := apdu.ExtendedEncoderV1{}.Encode(apdu.CommandAPDU{
		Ins: apdu.InsVersion,
		Le:  le(65536),
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0, byte(apdu.InsVersion), 0, 0, 0, 0, 0}, out)
}

func TestExtendedEncoderV1_1GetVersion(t *testing.T) {
	out, err := apdu.ExtendedEncoderV1_1{}.Encode(apdu.CommandAPDU{
		Ins: apdu.InsVersion,
		Le:  le(65536),
	})
	require.NoError(t, err)
	// Nc == 0, so the Le marker byte is still written before the 2-byte Le.
	require.Equal(t, []byte{0, byte(apdu.InsVersion), 0, 0, 0, 0, 0}, out)
}

func TestEncodersRejectOversizedRequestData(t *testing.T) {
	encoders := map[string]apdu.Encoder{
		"short":       apdu.ShortEncoder{},
		"extendedV1":  apdu.ExtendedEncoderV1{},
		"extendedV11": apdu.ExtendedEncoderV1_1{},
	}

	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			tooLong := make([]byte, enc.MaxRequestData()+1)
			_, err := enc.Encode(apdu.CommandAPDU{Ins: apdu.InsRegister, RequestData: tooLong})
			requireKind(t, err, apdu.KindRequestDataTooLong)

			ok := make([]byte, enc.MaxRequestData())
			_, err = enc.Encode(apdu.CommandAPDU{Ins: apdu.InsRegister, RequestData: ok})
			require.NoError(t, err)
		})
	}
}

func TestEncodersRejectZeroLe(t *testing.T) {
	encoders := []apdu.Encoder{apdu.ShortEncoder{}, apdu.ExtendedEncoderV1{}, apdu.ExtendedEncoderV1_1{}}
	for _, enc := range encoders {
		_, err := enc.Encode(apdu.CommandAPDU{Ins: apdu.InsVersion, Le: le(0)})
		requireKind(t, err, apdu.KindExpectedZeroResponseData)
	}
}

func TestEncodersRejectOversizedLe(t *testing.T) {
	encoders := []apdu.Encoder{apdu.ShortEncoder{}, apdu.ExtendedEncoderV1{}, apdu.ExtendedEncoderV1_1{}}
	for _, enc := range encoders {
		_, err := enc.Encode(apdu.CommandAPDU{Ins: apdu.InsVersion, Le: le(enc.MaxResponseData() + 1)})
		requireKind(t, err, apdu.KindExpectedResponseDataTooLong)

		_, err = enc.Encode(apdu.CommandAPDU{Ins: apdu.InsVersion, Le: le(enc.MaxResponseData())})
		require.NoError(t, err)
	}
}

func requireKind(t *testing.T, err error, want apdu.Kind) {
	t.Helper()
	require.Error(t, err)
	apduErr, ok := err.(*apdu.Error)
	require.True(t, ok, "expected *apdu.Error, got %T", err)
	require.Equal(t, want, apduErr.Kind)
}
