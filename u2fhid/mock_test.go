package u2fhid_test

import (
	"time"

	"github.com/cmsd2/u2f/u2fhid"
)

// mockHandle is a hand-rolled mock Handle: writes are recorded (with
// their leading report-id byte stripped off, since the spec's wire
// layout only prepends a report id on output reports), and reads are
// served from a queue the test pre-loads, or produced by echoing back
// what was written via echo mode.
type mockHandle struct {
	writes [][]byte
	reads  [][]byte

	echo bool
}

func (m *mockHandle) Write(report []byte) error {
	body := append([]byte(nil), report[1:]...) // strip report-id byte
	m.writes = append(m.writes, body)
	if m.echo {
		m.reads = append(m.reads, body)
	}
	return nil
}

func (m *mockHandle) ReadWithTimeout(buf []byte, _ time.Duration) (int, error) {
	if len(m.reads) == 0 {
		return 0, &u2fhid.Error{Kind: u2fhid.KindTransport, Detail: "mock transport exhausted"}
	}
	next := m.reads[0]
	m.reads = m.reads[1:]
	n := copy(buf, next)
	return n, nil
}

func (m *mockHandle) Close() error { return nil }

func (m *mockHandle) queueRead(body []byte) { m.reads = append(m.reads, body) }
