package rpapi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmsd2/u2f/rpapi"
)

func TestRegisterRequestRoundTrip(t *testing.T) {
	appID := "https://example.com"
	reqID := uint32(7)

	req := rpapi.Request{
		Type:  rpapi.RequestTypeRegister,
		AppID: &appID,
		RegisterRequests: []rpapi.RegisterRequest{
			{Version: "U2F_V2", Challenge: "base64url-challenge"},
		},
		RequestID: &reqID,
	}

	b, err := req.Marshal()
	require.NoError(t, err)

	got, err := rpapi.UnmarshalRequest(b)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestSignRequestRoundTrip(t *testing.T) {
	req := rpapi.Request{
		Type:      rpapi.RequestTypeSign,
		Challenge: "base64url-challenge",
		RegisteredKeys: []rpapi.RegisteredKey{
			{
				Version:    "U2F_V2",
				KeyHandle:  "base64url-key-handle",
				Transports: []rpapi.Transport{rpapi.TransportUSB, rpapi.TransportNFC},
			},
		},
	}

	b, err := req.Marshal()
	require.NoError(t, err)

	got, err := rpapi.UnmarshalRequest(b)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestRegisterResponseRoundTrip(t *testing.T) {
	resp := rpapi.Response{
		Type: rpapi.ResponseTypeRegister,
		ResponseData: rpapi.ResponseData{
			Version:          "U2F_V2",
			RegistrationData: "base64url-registration-data",
			ClientData:       "base64url-client-data",
		},
	}

	b, err := resp.Marshal()
	require.NoError(t, err)

	got, err := rpapi.UnmarshalResponse(b)
	require.NoError(t, err)
	require.Equal(t, resp, got)
	require.False(t, got.ResponseData.IsError())
}

func TestErrorResponseRoundTrip(t *testing.T) {
	code := rpapi.ErrorCodeBadRequest
	msg := "malformed request"

	resp := rpapi.Response{
		Type: rpapi.ResponseTypeSign,
		ResponseData: rpapi.ResponseData{
			ErrorCode:    &code,
			ErrorMessage: &msg,
		},
	}

	b, err := resp.Marshal()
	require.NoError(t, err)

	got, err := rpapi.UnmarshalResponse(b)
	require.NoError(t, err)
	require.True(t, got.ResponseData.IsError())
	require.Equal(t, code, *got.ResponseData.ErrorCode)
}
