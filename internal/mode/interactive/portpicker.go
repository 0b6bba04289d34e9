// ABOUTME: PortPickerModel is a filterable list of serial ports; Enter opens the highlighted one
// ABOUTME: Typing filters with sahilm/fuzzy over the port labels; a typed path is used when nothing matches

package interactive

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/blanca-go/internal/line"
)

// portSource adapts a port list to fuzzy.Source.
type portSource []line.PortInfo

func (p portSource) String(i int) string { return p[i].Label() }
func (p portSource) Len() int            { return len(p) }

// PortPickerModel lists ports and lets the user choose one.
type PortPickerModel struct {
	ports     []line.PortInfo
	visible   []int
	selected  int
	scrollOff int
	filter    string
	loading   bool
	err       error
	width     int
	height    int
}

// NewPortPickerModel starts in the loading state; feed it with SetPorts.
func NewPortPickerModel(width, height int) PortPickerModel {
	return PortPickerModel{loading: true, width: width, height: height}
}

// SetPorts replaces the list after an enumeration.
func (m PortPickerModel) SetPorts(ports []line.PortInfo, err error) PortPickerModel {
	m.loading = false
	m.ports = ports
	m.err = err
	m.selected = 0
	m.scrollOff = 0
	m.applyFilter()
	return m
}

// Filter returns the current filter text.
func (m PortPickerModel) Filter() string { return m.filter }

// Selected returns the port name Enter would choose, or "".
func (m PortPickerModel) Selected() string {
	if len(m.visible) == 0 {
		return strings.TrimSpace(m.filter)
	}
	return m.ports[m.visible[m.selected]].Name
}

// Init returns nil.
func (m PortPickerModel) Init() tea.Cmd { return nil }

// Update handles navigation, filtering and selection.
func (m PortPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			return m, func() tea.Msg { return DismissOverlayMsg{} }
		case tea.KeyEnter:
			name := m.Selected()
			if name == "" {
				return m, nil
			}
			return m, func() tea.Msg { return PortSelectedMsg{Name: name} }
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
				m.adjustScroll()
			}
		case tea.KeyDown:
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.adjustScroll()
			}
		case tea.KeyBackspace:
			if m.filter != "" {
				r := []rune(m.filter)
				m.filter = string(r[:len(r)-1])
				m.applyFilter()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.filter += string(msg.Runes)
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScroll()
	}
	return m, nil
}

func (m *PortPickerModel) applyFilter() {
	m.selected = 0
	m.scrollOff = 0
	if m.filter == "" {
		m.visible = make([]int, len(m.ports))
		for i := range m.ports {
			m.visible[i] = i
		}
		return
	}
	matches := fuzzy.FindFrom(m.filter, portSource(m.ports))
	m.visible = make([]int, len(matches))
	for i, match := range matches {
		m.visible[i] = match.Index
	}
}

func (m PortPickerModel) rows() int {
	// title + filter + blank
	return max(m.height-3, 1)
}

func (m *PortPickerModel) adjustScroll() {
	rows := m.rows()
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+rows {
		m.scrollOff = m.selected - rows + 1
	}
}

// View renders the picker.
func (m PortPickerModel) View() string {
	s := Styles()
	var b strings.Builder
	b.WriteString(s.Title.Render("Select a port") + s.Muted.Render("  (enter to open, esc to cancel)") + "\n")
	b.WriteString(s.Prompt.Render("filter: ") + m.filter + "\n\n")

	switch {
	case m.loading:
		b.WriteString(s.Muted.Render("  Scanning ports..."))
		return b.String()
	case m.err != nil:
		b.WriteString(s.FooterWarn.Render(fmt.Sprintf("  Unable to list ports: %v", m.err)))
		return b.String()
	case len(m.visible) == 0 && m.filter != "":
		b.WriteString(s.Muted.Render("  No match. Enter opens " + m.filter))
		return b.String()
	case len(m.visible) == 0:
		b.WriteString(s.Muted.Render("  No serial ports found."))
		return b.String()
	}

	end := min(m.scrollOff+m.rows(), len(m.visible))
	for i := m.scrollOff; i < end; i++ {
		row := "  " + m.ports[m.visible[i]].Label()
		if m.width > 0 {
			row = truncateToWidth(row, m.width)
		}
		if i == m.selected {
			row = s.Selection.Render(row)
		}
		if i > m.scrollOff {
			b.WriteByte('\n')
		}
		b.WriteString(row)
	}
	return b.String()
}
