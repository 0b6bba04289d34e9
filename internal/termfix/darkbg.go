// ABOUTME: Fixes the lipgloss background before bubbletea's init() can send OSC 10/11 queries
// ABOUTME: BLANCA_BACKGROUND=light|dark picks the palette; anything else means dark

package termfix

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// EnvBackground names the variable that selects the palette.
const EnvBackground = "BLANCA_BACKGROUND"

func init() {
	// Must not import bubbletea, directly or not, so this init runs first
	// and the query's sync.Once never fires.
	lipgloss.SetHasDarkBackground(darkBackground(os.Getenv(EnvBackground)))
}

// darkBackground reports whether value asks for the dark palette.
func darkBackground(value string) bool {
	return strings.ToLower(strings.TrimSpace(value)) != "light"
}
