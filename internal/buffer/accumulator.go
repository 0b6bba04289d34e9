// ABOUTME: Append-only read accumulator shared by the delivery path and the UI
// ABOUTME: Mutators hold the write lock for one bounded copy; readers share the read lock

package buffer

import (
	"errors"
	"sync"
)

// ErrExhausted is returned by Append once the configured byte limit would be
// exceeded. Appending stays disabled until Clear.
var ErrExhausted = errors.New("read buffer exhausted")

// Accumulator holds every byte received since the last Clear.
type Accumulator struct {
	mu        sync.RWMutex
	data      []byte
	limit     int
	exhausted bool
}

// New returns an empty accumulator. limit <= 0 means unbounded.
func New(limit int) *Accumulator {
	return &Accumulator{limit: limit}
}

// Append adds chunk to the end of the buffer. Either the whole chunk is
// stored or none of it is.
func (a *Accumulator) Append(chunk []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exhausted {
		return ErrExhausted
	}
	if a.limit > 0 && len(a.data)+len(chunk) > a.limit {
		a.exhausted = true
		return ErrExhausted
	}
	a.data = append(a.data, chunk...)
	return nil
}

// Usage returns the number of bytes currently held.
func (a *Accumulator) Usage() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.data)
}

// Exhausted reports whether appends are currently being rejected.
func (a *Accumulator) Exhausted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exhausted
}

// Limit returns the configured byte limit (0 = unbounded).
func (a *Accumulator) Limit() int {
	return a.limit
}

// Clear drops all content and re-enables appending.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	// Fresh slice: snapshots already handed out keep their own copies, and a
	// large backing array from a long session is released.
	a.data = nil
	a.exhausted = false
}

// raw returns a point-in-time copy of the contents.
func (a *Accumulator) raw() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out
}

// Snapshot returns an immutable copy of the contents. With asBytes the bytes
// are passed through untouched; otherwise they are decoded to normalized
// line-delimited text. dump renders a hex dump (asBytes) or an offset-indexed
// line dump (text) instead.
func (a *Accumulator) Snapshot(asBytes, dump bool) []byte {
	data := a.raw()
	switch {
	case asBytes && !dump:
		return data
	case asBytes && dump:
		return hexDump(data)
	case dump:
		return lineDump(data)
	default:
		return toText(data)
	}
}
