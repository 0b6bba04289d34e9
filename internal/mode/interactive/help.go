// ABOUTME: Help overlay: key bindings and slash commands rendered as markdown through glamour
// ABOUTME: Rendering is cached by content hash and width; long help scrolls in a viewport

package interactive

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mauromedda/blanca-go/internal/commands"
	"github.com/mauromedda/blanca-go/internal/keybindings"
)

// MarkdownRenderer wraps glamour to render markdown with caching.
type MarkdownRenderer struct {
	cache map[string]string // "hash:width" -> rendered
}

// NewMarkdownRenderer creates a MarkdownRenderer with an empty cache.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{cache: make(map[string]string)}
}

// Render returns the terminal-styled rendering of md wrapped at width.
// On renderer failure the raw markdown is returned.
func (r *MarkdownRenderer) Render(md string, width int) string {
	if md == "" {
		return ""
	}
	key := cacheKey(md, width)
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	rendered = strings.TrimRight(rendered, "\n ")

	r.cache[key] = rendered
	return rendered
}

func cacheKey(content string, width int) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x:%d", h[:8], width)
}

// keyBinding is one row of the key table.
type keyBinding struct {
	keys string
	desc string
}

// fixedKeys are handled by the input line and cannot be remapped.
var fixedKeys = []keyBinding{
	{"Enter", "send the input line, or run a /command"},
	{"PgUp/PgDn", "scroll the output"},
}

// helpMarkdown builds the help text from the key table and registry.
func helpMarkdown(version string, keys *keybindings.Manager, reg *commands.Registry) string {
	var b strings.Builder
	b.WriteString("# blanca")
	if version != "" {
		b.WriteString(" " + version)
	}
	b.WriteString("\n\n## Keys\n\n| Key | Action |\n|---|---|\n")
	for _, kb := range fixedKeys {
		fmt.Fprintf(&b, "| %s | %s |\n", kb.keys, kb.desc)
	}
	for _, a := range keybindings.Ordered {
		fmt.Fprintf(&b, "| %s | %s |\n", keys.FormatKeys(a), keybindings.Describe(a))
	}
	b.WriteString("\n## Commands\n\n| Command | Description |\n|---|---|\n")
	for _, cmd := range reg.List() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", cmd.Usage, cmd.Description)
	}
	return b.String()
}

// HelpModel is the help overlay. Esc, q or F1 dismiss it.
type HelpModel struct {
	md       string
	renderer *MarkdownRenderer
	view     viewport.Model
}

// NewHelpModel renders the help for the given area.
func NewHelpModel(md string, renderer *MarkdownRenderer, width, height int) HelpModel {
	m := HelpModel{md: md, renderer: renderer, view: viewport.New(width, height)}
	return m.resize(width, height)
}

func (m HelpModel) resize(width, height int) HelpModel {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 20
	}
	m.view.Width = width
	m.view.Height = height
	m.view.SetContent(m.renderer.Render(m.md, width))
	return m
}

// Init returns nil.
func (m HelpModel) Init() tea.Cmd { return nil }

// Update handles dismissal and scrolling.
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "f1":
			return m, func() tea.Msg { return DismissOverlayMsg{} }
		}
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// View renders the visible part of the help.
func (m HelpModel) View() string {
	return m.view.View()
}
