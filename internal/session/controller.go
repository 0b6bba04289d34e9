// ABOUTME: Session controller: the Idle/Opening/Open/Closing state machine over one line
// ABOUTME: Each delivered chunk is appended and displayed under the controller lock

// Package session owns the line lifecycle. It opens a line through a
// line.Driver, feeds received chunks to the accumulator and the display, and
// guarantees that nothing from a closed or superseded session is delivered.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mauromedda/blanca-go/internal/buffer"
	"github.com/mauromedda/blanca-go/internal/eventbus"
	"github.com/mauromedda/blanca-go/internal/line"
	"github.com/mauromedda/blanca-go/internal/log"
	"github.com/mauromedda/blanca-go/internal/render"
)

// Display receives rendered units. Implementations must not call back into
// the controller; DisplayChunk runs with the controller lock held.
type Display interface {
	DisplayChunk(chunk []byte)
	DisplayMessage(text string, sev render.Severity)
}

// Controller drives at most one session at a time.
type Controller struct {
	driver  line.Driver
	acc     *buffer.Accumulator
	display Display
	events  *eventbus.Bus[Event]
	clock   func() time.Time

	mu             sync.Mutex
	state          State
	epoch          uint64
	info           Info
	handle         *line.Handle
	lastErr        error
	closeRequested bool
	// idle is closed whenever the controller is in Idle.
	idle chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

// WithEvents publishes state transitions on bus.
func WithEvents(bus *eventbus.Bus[Event]) Option {
	return func(c *Controller) { c.events = bus }
}

// WithClock overrides time.Now for OpenedAt.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// NewController returns an Idle controller.
func NewController(driver line.Driver, acc *buffer.Accumulator, display Display, opts ...Option) *Controller {
	idle := make(chan struct{})
	close(idle)
	c := &Controller{
		driver:  driver,
		acc:     acc,
		display: display,
		clock:   time.Now,
		idle:    idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Info returns the current session metadata.
func (c *Controller) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// LastError returns the most recent failure recorded by the controller.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Accumulator returns the buffer chunks are appended to.
func (c *Controller) Accumulator() *buffer.Accumulator { return c.acc }

// setStateLocked moves to next and returns the event to publish once the
// lock is released.
func (c *Controller) setStateLocked(next State, cause error) Event {
	ev := Event{From: c.state, To: next, Info: c.info, Err: cause}
	c.state = next
	switch next {
	case Idle:
		c.info = Info{}
		c.handle = nil
		c.closeRequested = false
		close(c.idle)
	case Opening:
		c.idle = make(chan struct{})
	}
	return ev
}

func (c *Controller) publish(ev Event) {
	log.Debug("session: %s -> %s (%s)", ev.From, ev.To, ev.Info.LineName)
	c.events.Publish(ev)
}

func (c *Controller) message(sev render.Severity, format string, args ...any) {
	c.display.DisplayMessage(fmt.Sprintf(format, args...), sev)
}

// Open starts a session on lineName at rate baud. It returns once the line is
// open or the attempt failed.
func (c *Controller) Open(ctx context.Context, lineName string, rate int) error {
	c.mu.Lock()
	if c.state != Idle {
		current := c.info.LineName
		c.mu.Unlock()
		c.message(render.Warning, "A session is already running on %s", current)
		return ErrSessionAlreadyActive
	}

	var reason string
	switch {
	case lineName == "":
		reason = "no line name given"
	case rate <= 0:
		reason = fmt.Sprintf("invalid baud rate %d", rate)
	case ctx.Err() != nil:
		reason = ctx.Err().Error()
	}
	if reason != "" {
		err := fmt.Errorf("%w: %s", ErrLineOpenFailed, reason)
		c.lastErr = err
		c.mu.Unlock()
		c.message(render.Error, "Unable to start session: %s", reason)
		return err
	}

	c.info = Info{LineName: lineName, Rate: rate}
	ev := c.setStateLocked(Opening, nil)
	c.mu.Unlock()

	c.publish(ev)
	c.message(render.Info, "Starting session on %s", lineName)

	h, err := line.Open(c.driver, lineName, rate)
	if err == nil && ctx.Err() != nil {
		_ = h.Close()
		err = ctx.Err()
	}
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrLineOpenFailed, err)
		c.mu.Lock()
		c.lastErr = wrapped
		ev := c.setStateLocked(Idle, wrapped)
		c.mu.Unlock()

		log.Warn("session: open %s failed: %v", lineName, err)
		c.publish(ev)
		c.message(render.Error, "Unable to start session: %v", err)
		return wrapped
	}

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.handle = h
	c.info.ID = uuid.NewString()
	c.info.OpenedAt = c.clock()
	c.info.Detail = h.Detail()
	ev = c.setStateLocked(Open, nil)
	closeNow := c.closeRequested
	c.mu.Unlock()

	log.Info("session %s: opened %s at %d baud", ev.Info.ID, lineName, rate)
	c.publish(ev)
	if d := h.Detail(); d != "" {
		c.message(render.Info, "Session opened on %s at %d baud (peer: %s)", lineName, rate, d)
	} else {
		c.message(render.Info, "Session opened on %s at %d baud", lineName, rate)
	}
	go c.deliver(epoch, h)

	if closeNow {
		_ = c.Close()
	}
	return nil
}

// Close ends the running session. While Opening the request is recorded and
// honored as soon as the open resolves.
func (c *Controller) Close() error {
	c.mu.Lock()
	switch c.state {
	case Idle:
		c.mu.Unlock()
		c.message(render.Warning, "No session is running")
		return ErrNoActiveSession
	case Opening:
		c.closeRequested = true
		c.mu.Unlock()
		return nil
	case Closing:
		c.mu.Unlock()
		return nil
	}
	c.closeOpenLocked()
	return nil
}

// closeOpenLocked runs the deliberate close path from Open. It is entered
// with c.mu held and returns with it released.
func (c *Controller) closeOpenLocked() {
	h := c.handle
	ev := c.setStateLocked(Closing, nil)
	c.mu.Unlock()

	c.publish(ev)
	c.message(render.Warning, "Closing session...")
	c.finishClose(h, nil)
}

// finishClose releases the line and returns to Idle. The caller has already
// moved the controller to Closing.
func (c *Controller) finishClose(h *line.Handle, cause error) {
	if h != nil {
		if err := h.Close(); err != nil {
			log.Debug("session: closing %s: %v", h.Name(), err)
		}
	}

	c.mu.Lock()
	ev := c.setStateLocked(Idle, cause)
	c.mu.Unlock()

	log.Info("session %s: closed", ev.Info.ID)
	c.publish(ev)
	c.message(render.Info, "Session closed")
}

// deliver drains one handle's chunk stream. It runs until the pump exits.
func (c *Controller) deliver(epoch uint64, h *line.Handle) {
	for chunk := range h.Chunks() {
		c.deliverChunk(epoch, chunk)
	}
	if err := h.Err(); err != nil {
		c.lineDropped(epoch, err)
	}
}

// deliverChunk appends and displays one chunk as a single step. Chunks from
// a superseded epoch, or arriving after the session left Open, are dropped.
func (c *Controller) deliverChunk(epoch uint64, chunk []byte) bool {
	c.mu.Lock()
	if c.epoch != epoch || c.state != Open {
		c.mu.Unlock()
		return false
	}
	err := c.acc.Append(chunk)
	if err == nil {
		c.display.DisplayChunk(chunk)
		c.mu.Unlock()
		return true
	}

	c.lastErr = err
	h := c.handle
	ev := c.setStateLocked(Closing, err)
	c.mu.Unlock()

	log.Warn("session %s: %v (%d bytes held)", ev.Info.ID, err, c.acc.Usage())
	c.publish(ev)
	c.message(render.Error, "Read buffer exhausted")
	c.finishClose(h, err)
	return false
}

// lineDropped handles a pump that ended on its own.
func (c *Controller) lineDropped(epoch uint64, readErr error) {
	c.mu.Lock()
	if c.epoch != epoch || c.state != Open {
		c.mu.Unlock()
		return
	}
	cause := fmt.Errorf("%w: %v", ErrLineClosedUnexpectedly, readErr)
	c.lastErr = cause
	h := c.handle
	ev := c.setStateLocked(Closing, cause)
	c.mu.Unlock()

	log.Error("session %s: line dropped: %v", ev.Info.ID, readErr)
	c.publish(ev)
	c.message(render.Warning, "Connection lost: %v", readErr)
	c.finishClose(h, cause)
}

// Write sends p on the open line.
func (c *Controller) Write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		c.message(render.Warning, "No session is running")
		return ErrNoActiveSession
	}
	h := c.handle
	c.mu.Unlock()

	if _, err := h.Write(p); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrLineWriteFailed, err)
		c.mu.Lock()
		c.lastErr = wrapped
		c.mu.Unlock()
		log.Warn("session: write to %s failed: %v", h.Name(), err)
		c.message(render.Error, "Unable to write: %v", err)
		return wrapped
	}
	log.Debug("session: wrote %d bytes to %s", len(p), h.Name())
	return nil
}

// Shutdown forces the session to Idle from any state and waits for it.
// It is silent when nothing is running.
func (c *Controller) Shutdown(ctx context.Context) error {
	for {
		c.mu.Lock()
		st, idle := c.state, c.idle
		switch st {
		case Idle:
			c.mu.Unlock()
			return nil
		case Open:
			c.closeOpenLocked()
			continue
		case Opening:
			c.closeRequested = true
		}
		c.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
