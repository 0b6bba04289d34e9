// ABOUTME: Terminal renderer: formats received chunks and status messages onto a text surface
// ABOUTME: Display policies are atomic and apply only to units rendered after the change

// Package render turns line data and status messages into terminal output.
// It knows nothing about sessions; outbound text is handed to an Outbound
// collaborator.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// StampLayout is the en-US locale time format used for every stamp.
const StampLayout = "3:04:05 PM"

// Line ending names accepted by SetLineEnding.
const (
	EndingNone = "none"
	EndingCR   = "cr"
	EndingLF   = "lf"
	EndingCRLF = "crlf"
)

var lineEndings = map[string]string{
	EndingNone: "",
	EndingCR:   "\r",
	EndingLF:   "\n",
	EndingCRLF: "\r\n",
}

// ErrNoOutbound is delivered by SubmitOutbound when no collaborator is wired.
var ErrNoOutbound = errors.New("no outbound writer configured")

// Outbound sends bytes to the line.
type Outbound interface {
	Write(ctx context.Context, p []byte) error
}

// Renderer writes display units to a surface. Each unit is a single Write.
type Renderer struct {
	mu       sync.Mutex
	out      io.Writer
	clock    func() time.Time
	styles   Styles
	outbound Outbound

	timestamps atomic.Bool
	newline    atomic.Bool
	ending     atomic.Pointer[string]
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides time.Now for stamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Renderer) { r.clock = clock }
}

// WithStyles sets the palette.
func WithStyles(s Styles) Option {
	return func(r *Renderer) { r.styles = s }
}

// WithOutbound sets the collaborator used by SubmitOutbound.
func WithOutbound(o Outbound) Option {
	return func(r *Renderer) { r.outbound = o }
}

// WithTimestamps sets the initial timestamp policy.
func WithTimestamps(on bool) Option {
	return func(r *Renderer) { r.timestamps.Store(on) }
}

// WithNewline sets the initial newline policy.
func WithNewline(on bool) Option {
	return func(r *Renderer) { r.newline.Store(on) }
}

// WithLineEnding sets the initial outbound line ending. Unknown names are
// ignored.
func WithLineEnding(name string) Option {
	return func(r *Renderer) { _ = r.SetLineEnding(name) }
}

// New returns a renderer writing to out. Both policies default to on.
func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:    out,
		clock:  time.Now,
		styles: DefaultStyles(),
	}
	r.timestamps.Store(true)
	r.newline.Store(true)
	none := EndingNone
	r.ending.Store(&none)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetOutbound replaces the outbound collaborator.
func (r *Renderer) SetOutbound(o Outbound) {
	r.mu.Lock()
	r.outbound = o
	r.mu.Unlock()
}

func (r *Renderer) stamp() string {
	return r.styles.Stamp.Render(r.clock().Format(StampLayout))
}

// DisplayChunk renders received bytes verbatim, optionally stamped and
// newline-terminated per the current policies.
func (r *Renderer) DisplayChunk(chunk []byte) {
	var b bytes.Buffer
	if r.timestamps.Load() {
		b.WriteString(r.stamp())
		b.WriteByte(' ')
	}
	b.Write(chunk)
	if r.newline.Load() {
		b.WriteByte('\n')
	}
	r.write(b.Bytes())
}

// DisplayMessage renders a stamped, severity-styled status line.
func (r *Renderer) DisplayMessage(text string, sev Severity) {
	var b bytes.Buffer
	b.WriteString(r.stamp())
	b.WriteByte(' ')
	b.WriteString(r.styles.For(sev).Render(text))
	b.WriteByte('\n')
	r.write(b.Bytes())
}

// DisplayMessagef is DisplayMessage with formatting.
func (r *Renderer) DisplayMessagef(sev Severity, format string, args ...any) {
	r.DisplayMessage(fmt.Sprintf(format, args...), sev)
}

func (r *Renderer) write(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out != nil {
		_, _ = r.out.Write(p)
	}
}

// SetTimestampPolicy toggles stamping of received chunks.
func (r *Renderer) SetTimestampPolicy(on bool) { r.timestamps.Store(on) }

// Timestamps reports the timestamp policy.
func (r *Renderer) Timestamps() bool { return r.timestamps.Load() }

// SetNewlinePolicy toggles the newline after each received chunk.
func (r *Renderer) SetNewlinePolicy(on bool) { r.newline.Store(on) }

// Newline reports the newline policy.
func (r *Renderer) Newline() bool { return r.newline.Load() }

// SetLineEnding selects the bytes appended to outbound text.
func (r *Renderer) SetLineEnding(name string) error {
	if _, ok := lineEndings[name]; !ok {
		return fmt.Errorf("unknown line ending %q (want none, cr, lf or crlf)", name)
	}
	r.ending.Store(&name)
	return nil
}

// LineEnding returns the current line ending name.
func (r *Renderer) LineEnding() string { return *r.ending.Load() }

// SubmitOutbound sends text plus the current line ending without blocking
// the caller. The returned channel yields exactly one result.
func (r *Renderer) SubmitOutbound(ctx context.Context, text string) <-chan error {
	result := make(chan error, 1)

	r.mu.Lock()
	o := r.outbound
	r.mu.Unlock()
	if o == nil {
		result <- ErrNoOutbound
		return result
	}

	payload := []byte(text + lineEndings[r.LineEnding()])
	go func() {
		result <- o.Write(ctx, payload)
	}()
	return result
}
