// ABOUTME: Root Bubble Tea model: scrollback viewport, input line, footer and overlays
// ABOUTME: Controller and buffer operations run inside tea.Cmd goroutines; Update never blocks on the line

package interactive

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/blanca-go/internal/commands"
	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/keybindings"
	"github.com/mauromedda/blanca-go/internal/log"
	"github.com/mauromedda/blanca-go/internal/render"
)

const (
	// frameInterval coalesces bursts of inbound data into one repaint.
	frameInterval = 33 * time.Millisecond
	// chromeHeight is everything below the viewport: two separators, the
	// input line and the two-line footer.
	chromeHeight = 5
	promptText   = "❯ "
)

// shared holds mutable state that must survive Bubble Tea's value-copy semantics.
type shared struct {
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
}

// AppModel is the root Bubble Tea model for the interactive terminal.
type AppModel struct {
	sh *shared // survives value copies

	width, height int
	follow        bool

	output viewport.Model
	input  textinput.Model
	footer FooterModel

	// Overlay (nil = no overlay); replaces the viewport while shown.
	overlay tea.Model

	deps        AppDeps
	settings    config.Settings
	keys        *keybindings.Manager
	cmdRegistry *commands.Registry
	markdown    *MarkdownRenderer

	// Cached separator string (recomputed only on WindowSizeMsg)
	cachedSep string
}

// NewAppModel creates an AppModel wired with the given dependencies.
func NewAppModel(deps AppDeps) AppModel {
	ctx, cancel := context.WithCancel(context.Background())
	reg := commands.NewRegistry()
	if deps.Scrollback == nil {
		deps.Scrollback = NewScrollback(deps.Settings.Display.ScrollbackLines)
	}

	in := textinput.New()
	in.Prompt = promptText
	in.PromptStyle = Styles().Prompt
	in.Placeholder = "type to send, /help for commands"
	in.ShowSuggestions = true
	in.SetSuggestions(commandSuggestions(reg))
	in.Focus()

	m := AppModel{
		sh:          &shared{ctx: ctx, cancel: cancel},
		follow:      true,
		output:      viewport.New(0, 0),
		input:       in,
		footer:      NewFooterModel(),
		deps:        deps,
		settings:    deps.Settings,
		keys:        keymap(deps.Settings),
		cmdRegistry: reg,
		markdown:    NewMarkdownRenderer(),
	}
	return m.syncFooter()
}

// keymap builds the key bindings for s, falling back to the defaults when
// the keys section is invalid.
func keymap(s config.Settings) *keybindings.Manager {
	km, err := keybindings.New(s.Keys)
	if err != nil {
		log.Warn("keys: %v", err)
		return keybindings.NewDefault()
	}
	return km
}

func commandSuggestions(reg *commands.Registry) []string {
	cmds := reg.List()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = "/" + c.Name
	}
	return out
}

// Init starts the scrollback watcher, the usage poll and the cursor blink.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForActivity(), m.usageTick())
}

// waitForActivity blocks until the scrollback changes, then waits one frame
// so a burst of chunks becomes a single repaint.
func (m AppModel) waitForActivity() tea.Cmd {
	sb, ctx := m.deps.Scrollback, m.sh.ctx
	return func() tea.Msg {
		select {
		case <-sb.Notify():
		case <-ctx.Done():
			return nil
		}
		select {
		case <-time.After(frameInterval):
		case <-ctx.Done():
			return nil
		}
		return scrollbackMsg{}
	}
}

func (m AppModel) usageTick() tea.Cmd {
	interval := m.settings.Buffer.UsageInterval
	if interval <= 0 {
		interval = time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return usageTickMsg(t) })
}

// Update routes messages to the appropriate handler.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// --- Layout ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.cachedSep = strings.Repeat("─", max(msg.Width, 0))
		return m.layout(), nil

	// --- Background producers ---
	case scrollbackMsg:
		return m.refreshOutput(), m.waitForActivity()

	case usageTickMsg:
		return m.syncFooter(), m.usageTick()

	case SessionEventMsg:
		m.footer = m.footer.WithState(msg.Event.To).WithSession(msg.Event.Info)
		return m.syncFooter(), nil

	case SettingsReloadedMsg:
		return m.applySettings(msg), nil

	// --- Command and operation results ---
	case commandResultMsg:
		return m.applyCommandResult(msg)

	case opDoneMsg:
		return m.syncFooter(), nil

	// --- Overlays ---
	case portsLoadedMsg:
		if picker, ok := m.overlay.(PortPickerModel); ok {
			m.overlay = picker.SetPorts(msg.ports, msg.err)
		}
		return m, nil

	case PortSelectedMsg:
		m.overlay = nil
		return m, m.openCmd(msg.Name, m.settings.Line.Rate)

	case DismissOverlayMsg:
		m.overlay = nil
		return m, nil

	// --- Input ---
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		m.follow = m.output.AtBottom()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the viewport (or overlay), input line and footer.
func (m AppModel) View() string {
	s := Styles()

	body := m.output.View()
	if m.overlay != nil {
		h := m.bodyHeight()
		body = lipgloss.NewStyle().Height(h).MaxHeight(h).Render(m.overlay.View())
	}

	sep := s.Border.Render(m.cachedSep)
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		sep,
		m.input.View(),
		sep,
		m.footer.View(),
	)
}

// --- Key handling ---

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay != nil {
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	if action := m.keys.ActionFor(msg.String()); action != "" {
		return m.runAction(action)
	}

	switch msg.String() {
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		m.follow = m.output.AtBottom()
		return m, cmd

	case "enter":
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.input.Reset()
		m.follow = true
		if commands.IsCommand(strings.TrimSpace(text)) {
			m.deps.Scrollback.WriteString(Styles().Prompt.Render(promptText+text) + "\n")
			return m, m.runCommand(text)
		}
		return m, m.sendCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runAction performs a remappable key action.
func (m AppModel) runAction(action keybindings.Action) (tea.Model, tea.Cmd) {
	deps := m.deps
	switch action {
	case keybindings.ActionQuit:
		return m.quit()

	case keybindings.ActionHelp:
		m.overlay = NewHelpModel(helpMarkdown(deps.Version, m.keys, m.cmdRegistry), m.markdown, m.width, m.bodyHeight())
		return m, nil

	case keybindings.ActionPorts:
		m.overlay = NewPortPickerModel(m.width, m.bodyHeight())
		return m, m.loadPorts()

	case keybindings.ActionOpen:
		return m, m.openCmd(m.settings.Line.Name, m.settings.Line.Rate)

	case keybindings.ActionClose:
		return m, keyOp(deps.Controller.Close)

	case keybindings.ActionToggleTimestamps:
		on := !deps.Renderer.Timestamps()
		deps.Renderer.SetTimestampPolicy(on)
		m.note("Timestamps " + onOff(on) + ".")
		return m.syncFooter(), nil

	case keybindings.ActionToggleNewline:
		on := !deps.Renderer.Newline()
		deps.Renderer.SetNewlinePolicy(on)
		m.note("Newline " + onOff(on) + ".")
		return m.syncFooter(), nil

	case keybindings.ActionClear:
		acc := deps.Controller.Accumulator()
		return m, keyOp(func() error {
			acc.Clear()
			m.note("Read buffer cleared.")
			return nil
		})

	case keybindings.ActionSave:
		path := m.settings.DefaultSavePath(deps.now())
		asBytes, dump := m.settings.Save.AsBytes, m.settings.Save.Dump
		return m, keyOp(func() error {
			saveBuffer(deps, path, asBytes, dump)
			return nil
		})

	case keybindings.ActionComplete:
		if guess := m.completion(); guess != "" {
			m.input.SetValue(guess)
			m.input.CursorEnd()
		}
		return m, nil
	}
	return m, nil
}

// completion returns the input with its command word completed, or "".
func (m AppModel) completion() string {
	v := m.input.Value()
	if !commands.IsCommand(v) || strings.Contains(v, " ") {
		return ""
	}
	guess := m.cmdRegistry.BestMatch(v)
	if guess == "" {
		return ""
	}
	return "/" + guess + " "
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.sh.cancel()
	return m, tea.Quit
}

// --- Operations ---

func (m AppModel) openCmd(name string, rate int) tea.Cmd {
	ctrl, ctx := m.deps.Controller, m.sh.ctx
	return keyOp(func() error {
		return ctrl.Open(ctx, name, rate)
	})
}

func (m AppModel) sendCmd(text string) tea.Cmd {
	r, ctx := m.deps.Renderer, m.sh.ctx
	return func() tea.Msg {
		return opDoneMsg{err: <-r.SubmitOutbound(ctx, text)}
	}
}

func (m AppModel) loadPorts() tea.Cmd {
	list := m.deps.ListPorts
	return func() tea.Msg {
		if list == nil {
			return portsLoadedMsg{}
		}
		ports, err := list()
		return portsLoadedMsg{ports: ports, err: err}
	}
}

func (m AppModel) applyCommandResult(msg commandResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.note(errText(msg.err))
	}
	if msg.output != "" {
		m.note(msg.output)
	}
	m = m.syncFooter()
	if msg.effects.quit {
		return m.quit()
	}
	return m, nil
}

// applySettings takes live-reloadable policies from a config reload. Line
// selection applies to the next open; a running session is untouched.
func (m AppModel) applySettings(msg SettingsReloadedMsg) AppModel {
	if msg.Err != nil {
		m.deps.Renderer.DisplayMessagef(render.Warning, "Configuration reload failed: %v", msg.Err)
		return m
	}
	s := msg.Settings
	r := m.deps.Renderer
	r.SetTimestampPolicy(s.Display.Timestamps)
	r.SetNewlinePolicy(s.Display.Newline)
	if err := r.SetLineEnding(s.Outbound.LineEnding); err != nil {
		log.Warn("config reload: %v", err)
	}
	m.settings = s
	m.keys = keymap(s)
	m.note("Configuration reloaded.")
	return m.syncFooter()
}

// note appends locally generated text to the scrollback.
func (m AppModel) note(text string) {
	s := Styles()
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		m.deps.Scrollback.WriteString(s.Note.Render(l) + "\n")
	}
}

// --- Layout helpers ---

func (m AppModel) bodyHeight() int {
	return max(m.height-chromeHeight, 1)
}

func (m AppModel) layout() AppModel {
	m.output.Width = m.width
	m.output.Height = m.bodyHeight()
	m.input.Width = max(m.width-len(promptText)-1, 1)
	m.footer = m.footer.WithWidth(m.width)
	if m.overlay != nil {
		m.overlay, _ = m.overlay.Update(tea.WindowSizeMsg{Width: m.width, Height: m.bodyHeight()})
	}
	return m.refreshOutput()
}

func (m AppModel) refreshOutput() AppModel {
	m.output.SetContent(m.deps.Scrollback.Content(m.output.Width))
	if m.follow {
		m.output.GotoBottom()
	}
	return m
}

func (m AppModel) syncFooter() AppModel {
	ctrl, r := m.deps.Controller, m.deps.Renderer
	acc := ctrl.Accumulator()
	m.footer = m.footer.
		WithState(ctrl.State()).
		WithSession(ctrl.Info()).
		WithUsage(acc.Usage(), acc.Limit(), acc.Exhausted()).
		WithPolicies(r.Timestamps(), r.Newline(), r.LineEnding()).
		WithHint(m.keys.FormatKeys(keybindings.ActionHelp) + " help")
	return m
}
