// ABOUTME: Bridges from background producers into Bubble Tea: session events and config reloads
// ABOUTME: Producers call ProgramSender.Send; nothing here touches the model directly

package interactive

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/eventbus"
	"github.com/mauromedda/blanca-go/internal/log"
	"github.com/mauromedda/blanca-go/internal/session"
)

// ProgramSender is the interface for sending messages to Bubble Tea.
// Matches *tea.Program's Send method.
type ProgramSender interface {
	Send(msg tea.Msg)
}

// BridgeSessionEvents forwards every controller transition to program.
// The returned function unsubscribes.
func BridgeSessionEvents(bus *eventbus.Bus[session.Event], program ProgramSender) func() {
	if bus == nil {
		return func() {}
	}
	return bus.Subscribe(func(ev session.Event) {
		program.Send(SessionEventMsg{Event: ev})
	})
}

// WatchConfig reloads settings whenever one of paths changes and sends the
// result to program. The returned watcher must be stopped by the caller.
func WatchConfig(paths []string, reload func() (config.Settings, error), program ProgramSender) (*config.Watcher, error) {
	w, err := config.NewWatcher(paths, func() {
		s, err := reload()
		if err != nil {
			log.Warn("config reload: %v", err)
		}
		program.Send(SettingsReloadedMsg{Settings: s, Err: err})
	})
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}
