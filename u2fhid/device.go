package u2fhid

import (
	"crypto/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPacketSize is the HID report size used by essentially every
// U2F authenticator in the wild.
const DefaultPacketSize = 64

// readTimeout bounds every HID read; it is not retried by the framer.
const readTimeout = 3 * time.Second

// U2FDeviceInfo describes the negotiated protocol/device version,
// populated by Init.
type U2FDeviceInfo struct {
	ProtocolVersion byte
	MajorVersion    byte
	MinorVersion    byte
	BuildVersion    byte
	Capabilities    byte
}

// Device is one open, framed logical channel to a U2F HID
// authenticator. A Device exclusively owns its Handle for its
// lifetime; interleaving Command calls on the same Device from
// multiple goroutines has undefined behavior, matching the single
// logical channel's exclusive-use contract.
type Device struct {
	handle     Handle
	packetSize int
	channelID  uint32

	// Info is populated after a successful Init and nil before it.
	Info *U2FDeviceInfo

	log *logrus.Entry
}

// Open wraps an already-opened Handle as a Device with the default
// packet size and the broadcast channel id. Call Init before issuing
// any other command.
func Open(handle Handle) *Device {
	return &Device{
		handle:     handle,
		packetSize: DefaultPacketSize,
		channelID:  BroadcastCID,
		log:        logrus.NewEntry(discardLogger()),
	}
}

// SetLogger attaches a logger used for packet/handshake tracing.
func (d *Device) SetLogger(log *logrus.Entry) { d.log = log }

// SetPacketSize overrides the HID report size; only useful for tests
// against a mock transport with a non-default size.
func (d *Device) SetPacketSize(n int) { d.packetSize = n }

// Close releases the underlying HID handle.
func (d *Device) Close() error { return d.handle.Close() }

// SendRequest fragments payload and writes one init report followed by
// zero or more continuation reports.
func (d *Device) SendRequest(cmd Command, payload []byte) error {
	if len(payload) >= requestCeiling {
		return newErr(KindRequestTooLong, "%d bytes >= %d", len(payload), requestCeiling)
	}

	report, n := prepareInitReport(d.channelID, cmd, len(payload), payload, d.packetSize)
	d.log.WithFields(logrus.Fields{"cmd": cmd, "channel_id": d.channelID, "len": len(payload)}).Debug("u2fhid: send init report")
	if err := d.handle.Write(report); err != nil {
		return wrapErr(KindTransport, err, "write init report")
	}

	remaining := payload[n:]
	var seq byte
	for len(remaining) > 0 {
		seq++
		var consumed int
		report, consumed = prepareContReport(d.channelID, seq, remaining, d.packetSize)
		d.log.WithFields(logrus.Fields{"seq": seq, "channel_id": d.channelID}).Debug("u2fhid: send continuation report")
		if err := d.handle.Write(report); err != nil {
			return wrapErr(KindTransport, err, "write continuation report %d", seq)
		}
		remaining = remaining[consumed:]
	}

	return nil
}

// RecvResponse reads one init report and as many continuation reports
// as needed to accumulate the advertised payload length, returning the
// reassembled payload. It fails if the init report's command byte does
// not equal expectedCmd.
func (d *Device) RecvResponse(expectedCmd Command) ([]byte, error) {
	report := make([]byte, d.packetSize)

	n, err := d.handle.ReadWithTimeout(report, readTimeout)
	if err != nil {
		return nil, wrapErr(KindTransport, err, "read init report")
	}

	init, err := parseInitPacket(report[:n], d.packetSize)
	if err != nil {
		return nil, err
	}

	if init.channelID != d.channelID {
		return nil, newErr(KindUnknownChannelId, "got %#x, want %#x", init.channelID, d.channelID)
	}

	if init.command == byte(CmdError) {
		code := byte(0)
		if len(init.payload) > 0 {
			code = init.payload[0]
		}
		return nil, &Error{Kind: KindHidError, Code: code, Detail: HidErrorCode(code).String()}
	}

	if init.command != byte(expectedCmd) {
		return nil, &Error{Kind: KindUnknownHidCommand, Code: init.command, Detail: "response command byte did not match expected command"}
	}

	out := make([]byte, 0, init.payloadLen)
	remaining := init.payloadLen

	take := init.payload
	if len(take) > remaining {
		take = take[:remaining]
	}
	out = append(out, take...)
	remaining -= len(take)

	for remaining > 0 {
		n, err := d.handle.ReadWithTimeout(report, readTimeout)
		if err != nil {
			return nil, wrapErr(KindTransport, err, "read continuation report")
		}

		cont, err := parseContPacket(report[:n], d.packetSize)
		if err != nil {
			return nil, err
		}

		take := cont.payload
		if len(take) > remaining {
			take = take[:remaining]
		}
		out = append(out, take...)
		remaining -= len(take)
	}

	return out, nil
}

// Command writes payload then reads back a response for the same
// command, returning the reassembled response payload.
func (d *Device) Command(cmd Command, payload []byte) ([]byte, error) {
	if err := d.SendRequest(cmd, payload); err != nil {
		return nil, err
	}
	return d.RecvResponse(cmd)
}

// Init performs the logical-channel handshake: it sends an 8-byte
// random nonce on the broadcast channel, discards any Init response
// whose leading 8 bytes don't match (filtering concurrent Inits from
// other host processes on the shared broadcast channel), and adopts
// the channel id and device info from the first matching response.
func (d *Device) Init() error {
	d.channelID = BroadcastCID

	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return wrapErr(KindTransport, err, "generate init nonce")
	}

	if err := d.SendRequest(CmdInit, nonce); err != nil {
		return err
	}

	for {
		resp, err := d.RecvResponse(CmdInit)
		if err != nil {
			return err
		}

		if len(resp) < 17 {
			return newErr(KindInitResponseTooSmall, "%d bytes", len(resp))
		}

		if !bytesEqual(resp[:8], nonce) {
			d.log.Debug("u2fhid: discarding init response with mismatched nonce")
			continue
		}

		d.channelID = beU32(resp[8:12])
		d.Info = &U2FDeviceInfo{
			ProtocolVersion: resp[12],
			MajorVersion:    resp[13],
			MinorVersion:    resp[14],
			BuildVersion:    resp[15],
			Capabilities:    resp[16],
		}

		d.log.WithField("channel_id", d.channelID).Info("u2fhid: channel initialized")
		return nil
	}
}

// Ping round-trips payload through the device unchanged.
func (d *Device) Ping(payload []byte) ([]byte, error) {
	return d.Command(CmdPing, payload)
}

// Wink asks the device to perform a physical user-visible signal (LED
// blink, etc). The result is intentionally ignored by callers that
// treat it as a courtesy liveness check rather than a load-bearing
// operation; Wink itself still reports any transport-level failure.
func (d *Device) Wink() error {
	_, err := d.Command(CmdWink, nil)
	return err
}

// ChannelID returns the channel id currently in use (BroadcastCID
// before Init succeeds).
func (d *Device) ChannelID() uint32 { return d.channelID }

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
