// ABOUTME: Lipgloss styles for timestamps and severity-colored status messages
// ABOUTME: PlainStyles renders without escapes, for files, pipes and tests

package render

import "github.com/charmbracelet/lipgloss"

// Severity classifies status messages.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Styles is the renderer palette.
type Styles struct {
	Stamp   lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// For returns the message style for sev.
func (s Styles) For(sev Severity) lipgloss.Style {
	switch sev {
	case Warning:
		return s.Warning
	case Error:
		return s.Error
	default:
		return s.Info
	}
}

// DefaultStyles: black on white bold stamps; green, yellow, red bold messages.
func DefaultStyles() Styles {
	return Styles{
		Stamp:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15")),
		Info:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
}

// PlainStyles applies no formatting.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Stamp: plain, Info: plain, Warning: plain, Error: plain}
}
