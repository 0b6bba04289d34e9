// ABOUTME: Keymap for interactive mode with O(1) key-to-action lookup
// ABOUTME: Defaults can be remapped per action from the keys: settings section; conflicts are rejected

package keybindings

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Action names a remappable interactive-mode operation.
type Action string

// Remappable actions. The string values are the keys of the keys: section.
const (
	ActionOpen             Action = "open"
	ActionClose            Action = "close"
	ActionPorts            Action = "ports"
	ActionToggleTimestamps Action = "toggle_timestamps"
	ActionToggleNewline    Action = "toggle_newline"
	ActionClear            Action = "clear"
	ActionSave             Action = "save"
	ActionComplete         Action = "complete"
	ActionHelp             Action = "help"
	ActionQuit             Action = "quit"
)

// Ordered lists every action in display order.
var Ordered = []Action{
	ActionOpen, ActionPorts, ActionClose,
	ActionToggleTimestamps, ActionToggleNewline,
	ActionClear, ActionSave,
	ActionComplete, ActionHelp, ActionQuit,
}

var descriptions = map[Action]string{
	ActionOpen:             "open a session on the configured line",
	ActionPorts:            "pick a serial port and open it",
	ActionClose:            "close the running session",
	ActionToggleTimestamps: "toggle timestamps",
	ActionToggleNewline:    "toggle newline after received data",
	ActionClear:            "clear the read buffer",
	ActionSave:             "save the read buffer to the default path",
	ActionComplete:         "complete a /command",
	ActionHelp:             "toggle this help",
	ActionQuit:             "close the session and quit",
}

// Defaults returns the built-in bindings. Keys use bubbletea's KeyMsg.String() form.
func Defaults() map[Action][]string {
	return map[Action][]string{
		ActionOpen:             {"ctrl+o"},
		ActionPorts:            {"ctrl+p"},
		ActionClose:            {"ctrl+x"},
		ActionToggleTimestamps: {"ctrl+t"},
		ActionToggleNewline:    {"ctrl+n"},
		ActionClear:            {"ctrl+l"},
		ActionSave:             {"ctrl+s"},
		ActionComplete:         {"tab"},
		ActionHelp:             {"f1"},
		ActionQuit:             {"ctrl+c", "ctrl+d"},
	}
}

// reserved keys are handled by the input line and cannot be bound.
var reserved = map[string]bool{
	"enter": true, "up": true, "down": true, "pgup": true, "pgdown": true,
	"left": true, "right": true, "backspace": true, "esc": true,
}

// ConflictInfo describes a key bound to more than one action.
type ConflictInfo struct {
	Key     string
	Actions []Action
}

func (c ConflictInfo) String() string {
	names := make([]string, len(c.Actions))
	for i, a := range c.Actions {
		names[i] = string(a)
	}
	return fmt.Sprintf("%s is bound to %s", c.Key, strings.Join(names, " and "))
}

// Manager maps keys to actions.
type Manager struct {
	bindings map[Action][]string
	lookup   map[string]Action // "ctrl+o" → ActionOpen
}

// NewDefault returns a Manager with the built-in bindings.
func NewDefault() *Manager {
	m := &Manager{bindings: Defaults()}
	m.buildLookup()
	return m
}

// New applies overrides on top of the defaults. An override replaces every
// key of its action; an empty list unbinds the action. Unknown actions,
// reserved keys and conflicting bindings are errors.
func New(overrides map[string][]string) (*Manager, error) {
	b := Defaults()
	for name, keys := range overrides {
		a := Action(name)
		if _, ok := descriptions[a]; !ok {
			return nil, fmt.Errorf("keys: unknown action %q", name)
		}
		norm := make([]string, 0, len(keys))
		for _, k := range keys {
			k = normalize(k)
			if k == "" {
				continue
			}
			if reserved[k] {
				return nil, fmt.Errorf("keys.%s: %q is reserved", name, k)
			}
			norm = append(norm, k)
		}
		b[a] = norm
	}

	m := &Manager{bindings: b}
	if c := m.Conflicts(); len(c) > 0 {
		return nil, fmt.Errorf("keys: %s", c[0])
	}
	m.buildLookup()
	return m, nil
}

// ActionFor returns the action bound to key, or "" if unbound.
func (m *Manager) ActionFor(key string) Action {
	return m.lookup[key]
}

// Keys returns the keys bound to a, in configured order.
func (m *Manager) Keys(a Action) []string {
	return slices.Clone(m.bindings[a])
}

// Describe returns the help text for a.
func Describe(a Action) string {
	return descriptions[a]
}

// Conflicts returns keys bound to several actions, sorted by key.
func (m *Manager) Conflicts() []ConflictInfo {
	byKey := make(map[string][]Action)
	for _, a := range Ordered {
		for _, k := range m.bindings[a] {
			byKey[k] = append(byKey[k], a)
		}
	}

	var out []ConflictInfo
	for _, k := range slices.Sorted(maps.Keys(byKey)) {
		if actions := byKey[k]; len(actions) > 1 {
			out = append(out, ConflictInfo{Key: k, Actions: actions})
		}
	}
	return out
}

// FormatKeys renders the keys of a for display, e.g. "Ctrl+C / Ctrl+D".
func (m *Manager) FormatKeys(a Action) string {
	keys := m.bindings[a]
	if len(keys) == 0 {
		return "(unbound)"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = Display(k)
	}
	return strings.Join(parts, " / ")
}

// Display turns "ctrl+shift+up" into "Ctrl+Shift+Up" and "f1" into "F1".
func Display(key string) string {
	parts := strings.Split(key, "+")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "+")
}

func (m *Manager) buildLookup() {
	m.lookup = make(map[string]Action, len(m.bindings)*2)
	for a, keys := range m.bindings {
		for _, k := range keys {
			m.lookup[k] = a
		}
	}
}

// normalize lower-cases a key and drops spaces, so "Ctrl + O" matches "ctrl+o".
func normalize(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), " ", ""))
}
