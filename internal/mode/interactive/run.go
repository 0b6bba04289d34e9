// ABOUTME: Entry point for the Bubble Tea interactive terminal
// ABOUTME: Creates the tea.Program, bridges session events and config reloads, blocks until exit

package interactive

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/blanca-go/internal/log"
)

// Run starts the interactive app. Blocks until the user exits. Shutting the
// session down afterwards is the caller's job.
func Run(deps AppDeps) error {
	m := NewAppModel(deps)

	p := tea.NewProgram(
		m,
		tea.WithOutput(os.Stderr),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Inject the program reference into the shared state.
	// NewAppModel allocates sh as a pointer, so the program's copy sees it.
	m.sh.program = p

	unsubscribe := BridgeSessionEvents(deps.Events, p)
	defer unsubscribe()

	if deps.Reload != nil && len(deps.ConfigPaths) > 0 {
		w, err := WatchConfig(deps.ConfigPaths, deps.Reload, p)
		if err != nil {
			log.Debug("config watch disabled: %v", err)
		} else {
			defer w.Stop()
		}
	}

	_, err := p.Run()
	m.sh.cancel()
	if err != nil {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
