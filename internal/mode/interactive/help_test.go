// ABOUTME: Tests for the help overlay and the cached glamour markdown renderer
// ABOUTME: Checks that keys and every registered command appear and that dismissal keys work

package interactive

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/blanca-go/internal/commands"
	"github.com/mauromedda/blanca-go/internal/keybindings"
)

var _ tea.Model = HelpModel{}

func TestHelpMarkdown_ListsCommandsAndKeys(t *testing.T) {
	t.Parallel()

	reg := commands.NewRegistry()
	km, err := keybindings.New(map[string][]string{"save": {"f5"}})
	if err != nil {
		t.Fatal(err)
	}
	md := helpMarkdown("v1.2.3", km, reg)

	if !strings.Contains(md, "# blanca v1.2.3") {
		t.Errorf("markdown missing title; got %q", md)
	}
	for _, cmd := range reg.List() {
		if !strings.Contains(md, cmd.Usage) {
			t.Errorf("markdown missing %s", cmd.Usage)
		}
	}
	for _, kb := range fixedKeys {
		if !strings.Contains(md, kb.keys) {
			t.Errorf("markdown missing key %s", kb.keys)
		}
	}
	for _, want := range []string{"| F5 | save the read buffer", "| Ctrl+C / Ctrl+D | close the session and quit"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing row %q", want)
		}
	}
	if strings.Contains(md, "Ctrl+S") {
		t.Error("remapped save still listed under Ctrl+S")
	}
}

func TestMarkdownRenderer_Caches(t *testing.T) {
	t.Parallel()

	r := NewMarkdownRenderer()
	first := r.Render("# Title\n\nsome *text*", 40)
	if first == "" {
		t.Fatal("Render returned empty output")
	}
	if !strings.Contains(first, "Title") {
		t.Errorf("Render = %q; want the heading text", first)
	}
	if len(r.cache) != 1 {
		t.Fatalf("cache size = %d; want 1", len(r.cache))
	}
	if second := r.Render("# Title\n\nsome *text*", 40); second != first {
		t.Errorf("cached render differs")
	}
	r.Render("# Title\n\nsome *text*", 60)
	if len(r.cache) != 2 {
		t.Errorf("cache size = %d; want 2 after a new width", len(r.cache))
	}
	if r.Render("", 40) != "" {
		t.Errorf("empty markdown should render empty")
	}
}

func TestHelpModel_Dismiss(t *testing.T) {
	t.Parallel()

	m := NewHelpModel(helpMarkdown("", keybindings.NewDefault(), commands.NewRegistry()), NewMarkdownRenderer(), 80, 20)
	if m.View() == "" {
		t.Fatal("View() is empty")
	}

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyF1},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s returned nil cmd", key)
		}
		if _, ok := cmd().(DismissOverlayMsg); !ok {
			t.Errorf("%s: cmd() = %T; want DismissOverlayMsg", key, cmd())
		}
	}
}
