// ABOUTME: Tests for FooterModel Bubble Tea leaf component
// ABOUTME: Verifies two-line status bar rendering, WithXxx builders, and truncation

package interactive

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/blanca-go/internal/session"
)

// Compile-time check: FooterModel must satisfy tea.Model.
var _ tea.Model = FooterModel{}

func TestFooterModel_Init(t *testing.T) {
	t.Parallel()

	if cmd := NewFooterModel().Init(); cmd != nil {
		t.Errorf("Init() returned non-nil cmd")
	}
}

func TestFooterModel_IdleView(t *testing.T) {
	t.Parallel()

	view := NewFooterModel().View()
	lines := strings.Split(view, "\n")
	if len(lines) != 2 {
		t.Fatalf("View() has %d lines; want 2", len(lines))
	}
	if !strings.Contains(lines[0], "IDLE") {
		t.Errorf("line 1 = %q; want IDLE badge", lines[0])
	}
	if !strings.Contains(lines[1], "buf 0 B") {
		t.Errorf("line 2 = %q; want buf 0 B", lines[1])
	}
}

func TestFooterModel_WithSession(t *testing.T) {
	t.Parallel()

	m := NewFooterModel().
		WithState(session.Open).
		WithSession(session.Info{
			ID:       "0123456789abcdef",
			LineName: "COM3",
			Rate:     9600,
			OpenedAt: time.Now(),
			Detail:   "/dev/pts/7",
		})
	view := m.View()

	for _, want := range []string{"OPEN", "COM3 @ 9600", "#01234567", "peer /dev/pts/7"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q; got %q", want, view)
		}
	}
	if strings.Contains(view, "89abcdef") {
		t.Errorf("View() shows the full session id; want an 8-char prefix")
	}

	cleared := m.WithState(session.Idle).WithSession(session.Info{})
	if strings.Contains(cleared.View(), "COM3") {
		t.Errorf("zero Info should clear the line name")
	}
}

func TestFooterModel_Usage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		used      int
		limit     int
		exhausted bool
		want      string
	}{
		{"no limit", 512, 0, false, "buf 512 B"},
		{"with limit", 1024, 4096, false, "buf 1.0 KiB / 4.0 KiB (25%)"},
		{"exhausted", 4096, 4096, true, "(100%) FULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			view := NewFooterModel().WithUsage(tt.used, tt.limit, tt.exhausted).View()
			if !strings.Contains(view, tt.want) {
				t.Errorf("View() missing %q; got %q", tt.want, view)
			}
		})
	}
}

func TestFooterModel_Policies(t *testing.T) {
	t.Parallel()

	view := NewFooterModel().WithPolicies(false, true, "crlf").View()
	if !strings.Contains(view, "ts:off nl:on eol:crlf") {
		t.Errorf("View() missing policy flags; got %q", view)
	}
}

func TestFooterModel_SessionEventMsg(t *testing.T) {
	t.Parallel()

	ev := session.Event{From: session.Opening, To: session.Open, Info: session.Info{LineName: "ttyS1", Rate: 115200}}
	updated, _ := NewFooterModel().Update(SessionEventMsg{Event: ev})
	view := updated.(FooterModel).View()
	if !strings.Contains(view, "OPEN") || !strings.Contains(view, "ttyS1 @ 115200") {
		t.Errorf("View() after event = %q; want OPEN and ttyS1 @ 115200", view)
	}
}

func TestFooterModel_Truncation(t *testing.T) {
	t.Parallel()

	m := NewFooterModel().
		WithState(session.Open).
		WithSession(session.Info{LineName: "/dev/serial/by-id/usb-FTDI_FT232R_USB_UART_A50285BI-if00-port0", Rate: 115200}).
		WithWidth(30)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	for i, l := range strings.Split(updated.(FooterModel).View(), "\n") {
		if w := visibleWidth(l); w > 30 {
			t.Errorf("line %d width = %d; want <= 30", i+1, w)
		}
	}
}
