// Package u2f is the top-level entry point of this module: it ties the
// U2FHID framing layer (package u2fhid), the APDU codec (package apdu),
// and the U2F command engine (package u2ftoken) together behind a
// single Channel type that exposes the library's public operations.
package u2f

import (
	"github.com/cmsd2/u2f/u2fhid"
	"github.com/cmsd2/u2f/u2ftoken"
)

// Channel is one open logical channel to a U2F HID authenticator. It
// exclusively owns the underlying HID handle for its lifetime; see
// u2fhid.Device for the concurrency and ownership contract.
type Channel struct {
	device *u2fhid.Device
	token  *u2ftoken.Token
}

// Open wraps an already-opened HID handle as a Channel. Call Init
// before issuing any other command; the broadcast channel id is used
// until Init assigns a real one.
func Open(handle u2fhid.Handle) *Channel {
	dev := u2fhid.Open(handle)
	return &Channel{
		device: dev,
		token:  u2ftoken.NewToken(dev),
	}
}

// DeviceInfo returns the negotiated protocol/device version info, or
// nil before Init has succeeded.
func (c *Channel) DeviceInfo() *u2fhid.U2FDeviceInfo { return c.device.Info }

// ChannelID returns the logical channel id currently in use.
func (c *Channel) ChannelID() uint32 { return c.device.ChannelID() }

// Close releases the underlying HID handle.
func (c *Channel) Close() error { return c.device.Close() }

// Init performs the Init handshake, assigning a logical channel id and
// populating DeviceInfo.
func (c *Channel) Init() error { return c.device.Init() }

// Ping round-trips payload through the device unchanged.
func (c *Channel) Ping(payload []byte) ([]byte, error) { return c.device.Ping(payload) }

// Wink asks the device for a physical liveness signal; its result is a
// courtesy and is not load-bearing (see u2fhid.Device.Wink).
func (c *Channel) Wink() error { return c.device.Wink() }

// Register creates a new credential bound to appParam. See
// u2ftoken.Token.Register for the user-presence retry contract.
func (c *Channel) Register(challengeParam, appParam []byte) (*u2ftoken.RegisterResponse, error) {
	return c.token.Register(challengeParam, appParam)
}

// Authenticate signs challengeParam/appParam with keyHandle's
// credential. See u2ftoken.Token.Authenticate for the user-presence
// retry contract.
func (c *Channel) Authenticate(challengeParam, appParam, keyHandle []byte) (*u2ftoken.AuthenticateResponse, error) {
	return c.token.Authenticate(challengeParam, appParam, keyHandle)
}

// CheckAuthenticate tests whether keyHandle is owned by this
// authenticator for appParam, without requiring user presence.
func (c *Channel) CheckAuthenticate(challengeParam, appParam, keyHandle []byte) error {
	return c.token.CheckAuthenticate(challengeParam, appParam, keyHandle)
}

// GetVersion asks the authenticator for its U2F version.
func (c *Channel) GetVersion() (u2ftoken.Version, error) { return c.token.GetVersion() }

// Token returns the underlying command engine, for callers that need to
// override its Encoder or Verifier (e.g. apdu.ExtendedEncoderV1_1 for
// spec-conformant LE emission).
func (c *Channel) Token() *u2ftoken.Token { return c.token }

// VerifyRegistration verifies a registration's attestation signature.
// It is a free function, not a Channel method, because verification
// needs no device I/O and is commonly run against a response loaded
// from disk long after the device was closed.
func VerifyRegistration(reg *u2ftoken.RegisterResponse, challengeParam, appParam []byte) error {
	return u2ftoken.VerifyRegistration(u2ftoken.StdlibCertVerifier{}, reg, challengeParam, appParam)
}
