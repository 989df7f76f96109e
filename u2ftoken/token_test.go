package u2ftoken_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmsd2/u2f/u2fhid"
	"github.com/cmsd2/u2f/u2ftoken"
)

const testChannelID uint32 = 0x11223344

// fakeHandle is a hand-rolled Handle double for driving a real
// u2fhid.Device/u2ftoken.Token pair end to end without any USB
// hardware: it auto-answers the Init handshake and otherwise serves
// responses the test pre-loads with queueResponse.
type fakeHandle struct {
	channelID  uint32
	packetSize int

	writes [][]byte
	reads  [][]byte
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{channelID: testChannelID, packetSize: 64}
}

func (f *fakeHandle) Write(report []byte) error {
	body := append([]byte(nil), report[1:]...)
	f.writes = append(f.writes, body)

	if body[4] == byte(u2fhid.CmdInit) {
		nonce := body[7:15]
		f.reads = append(f.reads, fragmentReport(u2fhid.BroadcastCID, byte(u2fhid.CmdInit), initPayload(nonce, f.channelID), f.packetSize)...)
	}
	return nil
}

func (f *fakeHandle) ReadWithTimeout(buf []byte, _ time.Duration) (int, error) {
	if len(f.reads) == 0 {
		return 0, &u2fhid.Error{Kind: u2fhid.KindTransport, Detail: "fake transport exhausted"}
	}
	next := f.reads[0]
	f.reads = f.reads[1:]
	return copy(buf, next), nil
}

func (f *fakeHandle) Close() error { return nil }

func (f *fakeHandle) queueResponse(cmd byte, payload []byte) {
	f.reads = append(f.reads, fragmentReport(f.channelID, cmd, payload, f.packetSize)...)
}

func initPayload(nonce []byte, newChannelID uint32) []byte {
	p := make([]byte, 17)
	copy(p[0:8], nonce)
	p[8] = byte(newChannelID >> 24)
	p[9] = byte(newChannelID >> 16)
	p[10] = byte(newChannelID >> 8)
	p[11] = byte(newChannelID)
	p[12] = 0x02 // protocol version
	p[13] = 0    // major
	p[14] = 0    // minor
	p[15] = 0    // build
	p[16] = 1    // capabilities
	return p
}

// fragmentReport reproduces the u2fhid wire framing (one init report
// plus continuation reports) for a scripted response payload; reads
// never carry a leading report-id byte.
func fragmentReport(channelID uint32, cmd byte, payload []byte, packetSize int) [][]byte {
	var reports [][]byte

	report := make([]byte, packetSize)
	putU32(report[0:4], channelID)
	report[4] = cmd
	report[5] = byte(len(payload) >> 8)
	report[6] = byte(len(payload))
	n := copy(report[7:], payload)
	reports = append(reports, report)

	remaining := payload[n:]
	var seq byte
	for len(remaining) > 0 {
		seq++
		cont := make([]byte, packetSize)
		putU32(cont[0:4], channelID)
		cont[4] = seq
		m := copy(cont[5:], remaining)
		reports = append(reports, cont)
		remaining = remaining[m:]
	}
	return reports
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func openTestToken(t *testing.T) (*u2ftoken.Token, *fakeHandle) {
	t.Helper()
	handle := newFakeHandle()
	dev := u2fhid.Open(handle)
	require.NoError(t, dev.Init())
	require.Equal(t, testChannelID, dev.ChannelID())
	return u2ftoken.NewToken(dev), handle
}

// fakeVerifier is a CertVerifier double that treats the first CertLen
// bytes of any buffer as "the certificate" without parsing real X.509,
// so registration tests don't need a cryptographically valid DER cert.
type fakeVerifier struct {
	CertLen int

	verifyCert      interface{}
	verifyMessage   []byte
	verifySignature []byte
	verifyErr       error
}

func (f *fakeVerifier) ParseEndEntityCert(der []byte) (interface{}, int, error) {
	if len(der) < f.CertLen {
		return nil, 0, fmt.Errorf("fakeVerifier: buffer shorter than CertLen: %d < %d", len(der), f.CertLen)
	}
	return "fake-cert", f.CertLen, nil
}

func (f *fakeVerifier) VerifyECDSAP256SHA256(cert interface{}, message, signature []byte) error {
	f.verifyCert = cert
	f.verifyMessage = message
	f.verifySignature = signature
	return f.verifyErr
}
