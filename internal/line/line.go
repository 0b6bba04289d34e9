// ABOUTME: Line resource boundary: driver/port abstraction plus the background read pump
// ABOUTME: A Handle owns one open port; Close is idempotent and waits for the pump to exit

// Package line exposes byte-stream endpoints (serial devices, pseudo-terminals)
// behind a small interface so the session controller never touches a device
// API directly.
package line

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ReadBufferSize bounds a single read from the port.
const ReadBufferSize = 10 * 1024

// chunkBacklog is the number of chunks the pump may queue ahead of delivery.
const chunkBacklog = 64

// Port is an open bidirectional byte stream. Read may return (0, nil) when a
// read timeout elapses without data.
type Port interface {
	io.ReadWriteCloser
}

// Describer is implemented by ports that can name their endpoint more
// usefully than the name they were opened with.
type Describer interface {
	Describe() string
}

// Driver opens ports by name.
type Driver interface {
	Open(name string, rate int) (Port, error)
}

// DriverFunc adapts a function to Driver.
type DriverFunc func(name string, rate int) (Port, error)

// Open calls f.
func (f DriverFunc) Open(name string, rate int) (Port, error) { return f(name, rate) }

// ErrUnknownDriver is returned by Resolve for unsupported kinds.
var ErrUnknownDriver = errors.New("unknown line driver")

// Handle is an open line with its read pump running.
type Handle struct {
	port   Port
	name   string
	detail string

	chunks chan []byte
	stop   chan struct{}
	done   chan struct{}

	writeMu sync.Mutex

	errMu   sync.Mutex
	readErr error

	closeOnce sync.Once
	closeErr  error
}

// Open opens name on d and starts pumping reads into Chunks.
func Open(d Driver, name string, rate int) (*Handle, error) {
	if d == nil {
		return nil, errors.New("nil driver")
	}
	p, err := d.Open(name, rate)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("driver returned no port for %s", name)
	}
	h := &Handle{
		port:   p,
		name:   name,
		chunks: make(chan []byte, chunkBacklog),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if ds, ok := p.(Describer); ok {
		h.detail = ds.Describe()
	}
	go h.pump()
	return h, nil
}

// Name is the name the line was opened with.
func (h *Handle) Name() string { return h.name }

// Detail is an optional endpoint description, e.g. the slave path of a pty.
func (h *Handle) Detail() string { return h.detail }

// Chunks yields received data in arrival order. It is closed when the pump
// exits, either because Close was called or the port failed.
func (h *Handle) Chunks() <-chan []byte { return h.chunks }

// Err returns the read error that ended the pump, or nil if the pump was
// stopped by Close or is still running.
func (h *Handle) Err() error {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	return h.readErr
}

// Write sends all of p. Concurrent writers are serialized.
func (h *Handle) Write(p []byte) (int, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	written := 0
	for written < len(p) {
		n, err := h.port.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// Close stops the pump and releases the port. Safe to call more than once;
// later calls return the first result.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		close(h.stop)
		h.closeErr = h.port.Close()
		<-h.done
	})
	return h.closeErr
}

func (h *Handle) stopping() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

func (h *Handle) pump() {
	defer close(h.done)
	defer close(h.chunks)

	buf := make([]byte, ReadBufferSize)
	for {
		n, err := h.port.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case h.chunks <- chunk:
			case <-h.stop:
				return
			}
		}
		if err != nil {
			if !h.stopping() {
				if errors.Is(err, io.EOF) {
					err = fmt.Errorf("%s: %w", h.name, io.ErrUnexpectedEOF)
				}
				h.errMu.Lock()
				h.readErr = err
				h.errMu.Unlock()
			}
			return
		}
		if h.stopping() {
			return
		}
	}
}
