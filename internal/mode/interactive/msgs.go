// ABOUTME: Bubble Tea message types for the interactive app
// ABOUTME: Session events, scrollback activity, usage ticks, overlay results, config reloads

package interactive

import (
	"time"

	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/line"
	"github.com/mauromedda/blanca-go/internal/session"
)

// scrollbackMsg signals new output on the scrollback surface.
type scrollbackMsg struct{}

// usageTickMsg drives the periodic buffer usage refresh.
type usageTickMsg time.Time

// SessionEventMsg carries a controller state transition into Update.
type SessionEventMsg struct {
	Event session.Event
}

// portsLoadedMsg carries the result of a port enumeration.
type portsLoadedMsg struct {
	ports []line.PortInfo
	err   error
}

// PortSelectedMsg is sent by the port picker when a line is chosen.
type PortSelectedMsg struct {
	Name string
}

// DismissOverlayMsg closes the active overlay.
type DismissOverlayMsg struct{}

// SettingsReloadedMsg carries freshly loaded settings after a config file change.
type SettingsReloadedMsg struct {
	Settings config.Settings
	Err      error
}

// commandResultMsg is the outcome of a slash command run off the UI goroutine.
type commandResultMsg struct {
	input   string
	output  string
	err     error
	effects cmdSideEffects
}

// opDoneMsg marks completion of a key-triggered controller operation.
type opDoneMsg struct {
	err error
}
