package worker

import (
	"bytes"
	"errors"
	"io"

	"github.com/moffa90/go-spimem/chip"
)

var errInjected = errors.New("injected fault")

// MockChip is a scripted chip facade for testing
type MockChip struct {
	data []byte

	// status script; StatusReady once exhausted
	statuses    []chip.Status
	statusCalls int
	onStatus    func(call int)

	// identify fails this many times before succeeding; -1 fails forever
	identifyFailures int
	identifyCalls    int
	onIdentify       func(call int)
	complete         bool

	// read call index that fails; -1 never
	readFailAt int
	readCalls  int
	readSizes  []int
	onRead     func(call int)

	writeEnableErr  error
	writeDisableErr error
	eraseErr        error

	calls []string
}

func NewMockChip(data []byte) *MockChip {
	return &MockChip{
		data:       data,
		readFailAt: -1,
		complete:   true,
	}
}

func (m *MockChip) Status() chip.Status {
	call := m.statusCalls
	m.statusCalls++
	m.calls = append(m.calls, "status")
	if m.onStatus != nil {
		m.onStatus(call)
	}
	if call < len(m.statuses) {
		return m.statuses[call]
	}
	return chip.StatusReady
}

func (m *MockChip) ReadBlock(offset int64, p []byte) error {
	call := m.readCalls
	m.readCalls++
	m.readSizes = append(m.readSizes, len(p))
	if m.onRead != nil {
		m.onRead(call)
	}
	if call == m.readFailAt {
		return errInjected
	}
	copy(p, m.data[offset:offset+int64(len(p))])
	return nil
}

func (m *MockChip) SetWriteEnabled(enable bool) error {
	if enable {
		m.calls = append(m.calls, "wren")
		return m.writeEnableErr
	}
	m.calls = append(m.calls, "wrdi")
	return m.writeDisableErr
}

func (m *MockChip) EraseChip() error {
	m.calls = append(m.calls, "erase")
	return m.eraseErr
}

func (m *MockChip) Identify() error {
	call := m.identifyCalls
	m.identifyCalls++
	if m.onIdentify != nil {
		m.onIdentify(call)
	}
	if m.identifyFailures < 0 || call < m.identifyFailures {
		return chip.ErrNoResponse
	}
	return nil
}

func (m *MockChip) InfoComplete() bool { return m.complete }

func (m *MockChip) Size() int64 { return int64(len(m.data)) }

// MockArtifact records block traffic for testing
type MockArtifact struct {
	content []byte
	pos     int
	size    int64

	written    bytes.Buffer
	writeSizes []int

	openErr  error
	closeErr error

	readFailAt  int
	writeFailAt int
	reads       int
	writes      int

	opens  int
	closes int
}

func NewMockArtifact(content []byte) *MockArtifact {
	return &MockArtifact{
		content:     content,
		size:        int64(len(content)),
		readFailAt:  -1,
		writeFailAt: -1,
	}
}

func (m *MockArtifact) Open() error {
	m.opens++
	return m.openErr
}

func (m *MockArtifact) Close() error {
	m.closes++
	return m.closeErr
}

func (m *MockArtifact) ReadBlock(p []byte) error {
	call := m.reads
	m.reads++
	if call == m.readFailAt {
		return errInjected
	}
	if m.pos+len(p) > len(m.content) {
		return io.ErrUnexpectedEOF
	}
	copy(p, m.content[m.pos:])
	m.pos += len(p)
	return nil
}

func (m *MockArtifact) WriteBlock(p []byte) error {
	call := m.writes
	m.writes++
	if call == m.writeFailAt {
		return errInjected
	}
	m.writeSizes = append(m.writeSizes, len(p))
	m.written.Write(p)
	return nil
}

func (m *MockArtifact) Size() int64 { return m.size }

// Mock logger for testing
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

// recorder collects events delivered to the callback
type recorder struct {
	events []Event
}

func (r *recorder) callback(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) count(ev Event) int {
	n := 0
	for _, e := range r.events {
		if e == ev {
			n++
		}
	}
	return n
}

func (r *recorder) last() Event {
	if len(r.events) == 0 {
		return Event(-1)
	}
	return r.events[len(r.events)-1]
}

// pattern returns n bytes of deterministic test data
func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*31 + i>>8)
	}
	return data
}
