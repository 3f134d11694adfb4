package capture

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// LogEntry is a single diagnostic line produced by a script.
type LogEntry struct {
	Time    int64  `json:"time"` // epoch milliseconds
	Message string `json:"message"`
}

// Buffers holds the observable state of one run: the append-only log buffer
// and the single error slot. A fresh Buffers is constructed per run, so
// nothing leaks across runs. Script-side mutation happens on the run loop
// goroutine; the mutex makes host-side reads after a handoff safe.
type Buffers struct {
	mu      sync.Mutex
	entries []LogEntry
	errMsg  string
	failed  bool
}

// New creates empty buffers for a run.
func New() *Buffers {
	return &Buffers{entries: []LogEntry{}}
}

// Append records one log message with the current timestamp.
func (b *Buffers) Append(message string) {
	b.mu.Lock()
	b.entries = append(b.entries, LogEntry{
		Time:    time.Now().UnixMilli(),
		Message: message,
	})
	b.mu.Unlock()
}

// Entries returns a copy of the log buffer in insertion order.
func (b *Buffers) Entries() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// SerializeLogs encodes the log buffer as a JSON array of {time, message}
// objects, in insertion order. Pure read, callable any number of times.
func (b *Buffers) SerializeLogs() (string, error) {
	b.mu.Lock()
	entries := make([]LogEntry, len(b.entries))
	copy(entries, b.entries)
	b.mu.Unlock()

	return sonic.MarshalString(entries)
}

// SetError stores the message of an uncaught failure. Overwrites any
// previous value: at most one message survives a run.
func (b *Buffers) SetError(message string) {
	b.mu.Lock()
	b.errMsg = message
	b.failed = true
	b.mu.Unlock()
}

// Error reports the captured failure message, if any.
func (b *Buffers) Error() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg, b.failed
}

// Len returns the number of buffered log entries.
func (b *Buffers) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
