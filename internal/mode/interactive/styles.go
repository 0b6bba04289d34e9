// ABOUTME: Lipgloss palette for the interactive chrome: separators, prompt, footer, overlays
// ABOUTME: Session data colors live in the render package; this covers everything around it

package interactive

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/blanca-go/internal/session"
)

// ThemeStyles is the UI palette.
type ThemeStyles struct {
	Border    lipgloss.Style
	Muted     lipgloss.Style
	Prompt    lipgloss.Style
	Note      lipgloss.Style
	Selection lipgloss.Style
	Title     lipgloss.Style

	StateIdle    lipgloss.Style
	StateOpening lipgloss.Style
	StateOpen    lipgloss.Style
	StateClosing lipgloss.Style

	FooterLine  lipgloss.Style
	FooterUsage lipgloss.Style
	FooterWarn  lipgloss.Style
	FooterFlag  lipgloss.Style
}

var styles = sync.OnceValue(func() ThemeStyles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return ThemeStyles{
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Note:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selection: lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("39")),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),

		StateIdle:    badge.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
		StateOpening: badge.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214")),
		StateOpen:    badge.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("42")),
		StateClosing: badge.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("203")),

		FooterLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		FooterUsage: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		FooterWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		FooterFlag:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
})

// Styles returns the shared palette.
func Styles() ThemeStyles { return styles() }

func (s ThemeStyles) stateBadge(st session.State) lipgloss.Style {
	switch st {
	case session.Opening:
		return s.StateOpening
	case session.Open:
		return s.StateOpen
	case session.Closing:
		return s.StateClosing
	default:
		return s.StateIdle
	}
}
