// ABOUTME: FooterModel is a Bubble Tea leaf that renders a two-line status bar
// ABOUTME: Line 1 shows session state, line and peer; line 2 shows buffer usage and display policies

package interactive

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/blanca-go/internal/commands"
	"github.com/mauromedda/blanca-go/internal/session"
)

// FooterModel renders a two-line status bar at the bottom of the terminal.
// Line 1: state + line@rate + session id + peer.
// Line 2: buffer usage + timestamps/newline/eol + key hint.
type FooterModel struct {
	state      session.State
	lineName   string
	rate       int
	sessionID  string
	peer       string
	used       int
	limit      int
	exhausted  bool
	timestamps bool
	newline    bool
	lineEnding string
	hint       string
	width      int
}

// NewFooterModel creates an idle FooterModel.
func NewFooterModel() FooterModel {
	return FooterModel{
		state:      session.Idle,
		lineEnding: "none",
		hint:       "F1 help",
	}
}

// Init returns nil; no commands needed for a leaf model.
func (m FooterModel) Init() tea.Cmd {
	return nil
}

// Update handles messages relevant to the footer.
func (m FooterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SessionEventMsg:
		m = m.WithState(msg.Event.To).WithSession(msg.Event.Info)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// WithState returns a FooterModel with the session state set.
func (m FooterModel) WithState(st session.State) FooterModel {
	m.state = st
	return m
}

// WithSession returns a FooterModel showing info's line, rate, id and peer.
// A zero Info clears them.
func (m FooterModel) WithSession(info session.Info) FooterModel {
	m.lineName = info.LineName
	m.rate = info.Rate
	m.sessionID = info.ID
	m.peer = info.Detail
	return m
}

// WithUsage returns a FooterModel with buffer usage set.
func (m FooterModel) WithUsage(used, limit int, exhausted bool) FooterModel {
	m.used = used
	m.limit = limit
	m.exhausted = exhausted
	return m
}

// WithPolicies returns a FooterModel with the display policies set.
func (m FooterModel) WithPolicies(timestamps, newline bool, lineEnding string) FooterModel {
	m.timestamps = timestamps
	m.newline = newline
	m.lineEnding = lineEnding
	return m
}

// WithHint returns a FooterModel with the trailing key hint set.
func (m FooterModel) WithHint(h string) FooterModel {
	m.hint = h
	return m
}

// WithWidth returns a FooterModel truncated to w columns.
func (m FooterModel) WithWidth(w int) FooterModel {
	m.width = w
	return m
}

// View renders the two-line footer.
func (m FooterModel) View() string {
	s := Styles()

	// === Line 1: state + line + id + peer ===
	parts := []string{s.stateBadge(m.state).Render(strings.ToUpper(m.state.String()))}
	if m.lineName != "" {
		parts = append(parts, s.FooterLine.Render(fmt.Sprintf("%s @ %d", m.lineName, m.rate)))
	}
	if m.sessionID != "" {
		id := m.sessionID
		if len(id) > 8 {
			id = id[:8]
		}
		parts = append(parts, s.Muted.Render("#"+id))
	}
	if m.peer != "" {
		parts = append(parts, s.Muted.Render("peer "+m.peer))
	}
	line1 := strings.Join(parts, " ")

	// === Line 2: usage + policies + hint ===
	usage := "buf " + commands.FormatBytes(m.used)
	usageStyle := s.FooterUsage
	if m.limit > 0 {
		pct := m.used * 100 / m.limit
		usage += fmt.Sprintf(" / %s (%d%%)", commands.FormatBytes(m.limit), pct)
		if pct >= 90 {
			usageStyle = s.FooterWarn
		}
	}
	if m.exhausted {
		usage += " FULL"
		usageStyle = s.FooterWarn
	}
	line2Parts := []string{
		usageStyle.Render(usage),
		s.FooterFlag.Render(fmt.Sprintf("ts:%s nl:%s eol:%s", onOff(m.timestamps), onOff(m.newline), m.lineEnding)),
	}
	if m.hint != "" {
		line2Parts = append(line2Parts, s.Muted.Render(m.hint))
	}
	line2 := strings.Join(line2Parts, s.Muted.Render("  "))

	if m.width > 0 {
		if visibleWidth(line1) > m.width {
			line1 = truncateToWidth(line1, m.width)
		}
		if visibleWidth(line2) > m.width {
			line2 = truncateToWidth(line2, m.width)
		}
	}

	return line1 + "\n" + line2
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
