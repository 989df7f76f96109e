package apdu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmsd2/u2f/apdu"
)

func TestDecodeRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5, 255, 1000} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		frame := append(append([]byte(nil), data...), 0x90, 0x00)

		resp, err := apdu.Decode(frame)
		require.NoError(t, err)
		require.Equal(t, data, resp.Data)
		require.Equal(t, apdu.StatusNoError, resp.Status)
	}
}

func TestDecodeStatusWord(t *testing.T) {
	resp, err := apdu.Decode([]byte{0x69, 0x85})
	require.NoError(t, err)
	require.Equal(t, apdu.StatusConditionsNotSatisfied, resp.Status)
	require.Empty(t, resp.Data)
}

func TestDecodeTooShort(t *testing.T) {
	for _, frame := range [][]byte{nil, {}, {0x90}} {
		_, err := apdu.Decode(frame)
		requireKind(t, err, apdu.KindResponseFrameTooShort)
	}
}
