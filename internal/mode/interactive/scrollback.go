// ABOUTME: Scrollback is the text surface the renderer writes to; line-capped and change-notifying
// ABOUTME: Keeps SGR color sequences, drops cursor-motion escapes and C0 controls that would corrupt the view

package interactive

import (
	"bytes"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const (
	esc        = 0x1b
	maxEscLen  = 32
	tabSpaces  = "    "
	sgrReset   = "\x1b[0m"
	defaultCap = 5000
)

// Scrollback accumulates rendered output as display lines. Writes never block
// beyond a short mutex hold; readers are signalled through Notify.
type Scrollback struct {
	mu     sync.Mutex
	lines  []string
	cur    []byte
	esc    []byte
	max    int
	notify chan struct{}
}

// NewScrollback keeps at most maxLines completed lines (<= 0 uses 5000).
func NewScrollback(maxLines int) *Scrollback {
	if maxLines <= 0 {
		maxLines = defaultCap
	}
	return &Scrollback{max: maxLines, notify: make(chan struct{}, 1)}
}

// Notify yields after one or more writes since the last receive.
func (s *Scrollback) Notify() <-chan struct{} { return s.notify }

// Write implements io.Writer.
func (s *Scrollback) Write(p []byte) (int, error) {
	s.mu.Lock()
	for _, b := range p {
		s.feed(b)
	}
	s.trim()
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return len(p), nil
}

// WriteString appends text verbatim, for locally generated notes.
func (s *Scrollback) WriteString(text string) {
	_, _ = s.Write([]byte(text))
}

func (s *Scrollback) feed(b byte) {
	if len(s.esc) > 0 {
		s.esc = append(s.esc, b)
		switch {
		case len(s.esc) == 2 && b != '[':
			s.esc = s.esc[:0]
		case len(s.esc) > 2 && b >= 0x40 && b <= 0x7e:
			if b == 'm' {
				s.cur = append(s.cur, s.esc...)
			}
			s.esc = s.esc[:0]
		case len(s.esc) > maxEscLen:
			s.esc = s.esc[:0]
		}
		return
	}

	switch {
	case b == esc:
		s.esc = append(s.esc, b)
	case b == '\n':
		s.finishLine()
	case b == '\t':
		s.cur = append(s.cur, tabSpaces...)
	case b == '\b':
		if _, size := utf8.DecodeLastRune(s.cur); size > 0 {
			s.cur = s.cur[:len(s.cur)-size]
		}
	case b < 0x20 || b == 0x7f:
		// CR and other controls are dropped.
	default:
		s.cur = append(s.cur, b)
	}
}

func (s *Scrollback) finishLine() {
	s.lines = append(s.lines, renderable(s.cur))
	s.cur = s.cur[:0]
}

func (s *Scrollback) trim() {
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = s.lines[over:]
	}
}

// renderable makes a stored line safe to hand to the view.
func renderable(line []byte) string {
	text := strings.ToValidUTF8(string(line), "\uFFFD")
	if bytes.IndexByte(line, esc) >= 0 {
		text += sgrReset
	}
	return text
}

// Lines returns the completed lines followed by the pending partial line,
// if any.
func (s *Scrollback) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines), len(s.lines)+1)
	copy(out, s.lines)
	if len(s.cur) > 0 {
		out = append(out, renderable(s.cur))
	}
	return out
}

// Len is the number of completed lines held.
func (s *Scrollback) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Reset drops everything shown so far.
func (s *Scrollback) Reset() {
	s.mu.Lock()
	s.lines = nil
	s.cur = s.cur[:0]
	s.esc = s.esc[:0]
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Content renders the scrollback wrapped to width.
func (s *Scrollback) Content(width int) string {
	text := strings.Join(s.Lines(), "\n")
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
