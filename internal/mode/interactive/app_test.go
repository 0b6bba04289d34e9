// ABOUTME: Tests for AppModel key handling, slash command wiring and background messages
// ABOUTME: A fakeController stands in for the session; commands returned by Update are run inline

package interactive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/blanca-go/internal/buffer"
	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/keybindings"
	"github.com/mauromedda/blanca-go/internal/line"
	"github.com/mauromedda/blanca-go/internal/render"
	"github.com/mauromedda/blanca-go/internal/session"
)

// fakeController records calls and flips state without touching a line.
type fakeController struct {
	mu      sync.Mutex
	state   session.State
	info    session.Info
	opens   []string
	closes  int
	written []byte
	acc     *buffer.Accumulator
}

func (f *fakeController) Open(_ context.Context, name string, rate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens = append(f.opens, name)
	f.state = session.Open
	f.info = session.Info{ID: "feedface-0000", LineName: name, Rate: rate}
	return nil
}

func (f *fakeController) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != session.Open {
		return session.ErrNoActiveSession
	}
	f.closes++
	f.state = session.Idle
	f.info = session.Info{}
	return nil
}

func (f *fakeController) Write(_ context.Context, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, p...)
	return nil
}

func (f *fakeController) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) Info() session.Info {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

func (f *fakeController) LastError() error                 { return nil }
func (f *fakeController) Accumulator() *buffer.Accumulator { return f.acc }

func (f *fakeController) snapshot() (opens []string, closes int, written string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opens...), f.closes, string(f.written)
}

var testNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func testDeps(t *testing.T) (AppDeps, *fakeController) {
	t.Helper()

	ctrl := &fakeController{acc: buffer.New(1024)}
	sb := NewScrollback(200)
	r := render.New(sb,
		render.WithStyles(render.PlainStyles()),
		render.WithClock(func() time.Time { return testNow }),
		render.WithOutbound(ctrl),
	)

	settings := *config.Defaults()
	settings.Line.Name = "/dev/ttyFAKE"
	settings.Line.Rate = 9600
	settings.Save.Dir = t.TempDir()

	return AppDeps{
		Controller: ctrl,
		Renderer:   r,
		Scrollback: sb,
		Settings:   settings,
		Version:    "test",
		ListPorts: func() ([]line.PortInfo, error) {
			return []line.PortInfo{{Name: "/dev/ttyS0"}, {Name: "/dev/ttyUSB3"}}, nil
		},
		Now: func() time.Time { return testNow },
	}, ctrl
}

// update feeds msg and returns the resulting model and cmd.
func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	result, cmd := m.Update(msg)
	model, ok := result.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T; want AppModel", result)
	}
	return model, cmd
}

// drive feeds msg, then runs each returned cmd and feeds its message back
// until no cmd remains.
func drive(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	for msg != nil {
		var cmd tea.Cmd
		m, cmd = update(t, m, msg)
		if cmd == nil {
			break
		}
		msg = cmd()
		if _, quit := msg.(tea.QuitMsg); quit {
			break
		}
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func scrollText(deps AppDeps) string {
	return strings.Join(deps.Scrollback.Lines(), "\n")
}

func TestAppModel_CtrlOOpensConfiguredLine(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	m := drive(t, NewAppModel(deps), key(tea.KeyCtrlO))

	opens, _, _ := ctrl.snapshot()
	if len(opens) != 1 || opens[0] != "/dev/ttyFAKE" {
		t.Fatalf("opens = %v; want [/dev/ttyFAKE]", opens)
	}
	if !strings.Contains(m.footer.View(), "/dev/ttyFAKE @ 9600") {
		t.Errorf("footer = %q; want the open line", m.footer.View())
	}
}

func TestAppModel_CtrlXCloses(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	m := drive(t, NewAppModel(deps), key(tea.KeyCtrlO))
	m = drive(t, m, key(tea.KeyCtrlX))

	if _, closes, _ := ctrl.snapshot(); closes != 1 {
		t.Errorf("closes = %d; want 1", closes)
	}
	if !strings.Contains(m.footer.View(), "IDLE") {
		t.Errorf("footer = %q; want IDLE", m.footer.View())
	}
}

func TestAppModel_PolicyToggles(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)

	m, _ = update(t, m, key(tea.KeyCtrlT))
	if deps.Renderer.Timestamps() {
		t.Error("Timestamps() = true after ctrl+t; want false")
	}
	m, _ = update(t, m, key(tea.KeyCtrlN))
	if deps.Renderer.Newline() {
		t.Error("Newline() = true after ctrl+n; want false")
	}
	if !strings.Contains(m.footer.View(), "ts:off nl:off") {
		t.Errorf("footer = %q; want ts:off nl:off", m.footer.View())
	}
	if text := scrollText(deps); !strings.Contains(text, "Timestamps off.") || !strings.Contains(text, "Newline off.") {
		t.Errorf("scrollback = %q; want toggle notes", text)
	}
}

func TestAppModel_EnterSendsPlainText(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	if err := deps.Renderer.SetLineEnding(render.EndingCRLF); err != nil {
		t.Fatal(err)
	}
	m := NewAppModel(deps)
	m.input.SetValue("AT+GMR")
	m = drive(t, m, key(tea.KeyEnter))

	if _, _, written := ctrl.snapshot(); written != "AT+GMR\r\n" {
		t.Errorf("written = %q; want %q", written, "AT+GMR\r\n")
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q; want cleared", m.input.Value())
	}
}

func TestAppModel_EnterIgnoresBlank(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)
	m.input.SetValue("   ")
	if _, cmd := update(t, m, key(tea.KeyEnter)); cmd != nil {
		t.Errorf("blank enter returned a cmd")
	}
}

func TestAppModel_SlashCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"usage", "/usage", "Read buffer: 0 B of 1.0 KiB (0.0%)"},
		{"status", "/status", "State:       idle"},
		{"eol", "/eol lf", "Line ending: lf."},
		{"ports", "/ports", "/dev/ttyUSB3"},
		{"unknown suggests", "/stat", "did you mean /status?"},
		{"bad toggle", "/ts maybe", "Error: expected on or off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deps, _ := testDeps(t)
			m := NewAppModel(deps)
			m.input.SetValue(tt.input)
			drive(t, m, key(tea.KeyEnter))

			text := scrollText(deps)
			if !strings.Contains(text, promptText+tt.input) {
				t.Errorf("scrollback missing echoed command; got %q", text)
			}
			if !strings.Contains(text, tt.want) {
				t.Errorf("scrollback = %q; want %q", text, tt.want)
			}
		})
	}
}

func TestAppModel_SlashOpenAndSend(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	m := NewAppModel(deps)
	m.input.SetValue("/open COM3 19200")
	m = drive(t, m, key(tea.KeyEnter))
	m.input.SetValue("/send hello")
	drive(t, m, key(tea.KeyEnter))

	opens, _, written := ctrl.snapshot()
	if len(opens) != 1 || opens[0] != "COM3" {
		t.Errorf("opens = %v; want [COM3]", opens)
	}
	if ctrl.Info().Rate != 19200 {
		t.Errorf("rate = %d; want 19200", ctrl.Info().Rate)
	}
	if written != "hello" {
		t.Errorf("written = %q; want hello", written)
	}
}

func TestAppModel_QuitCommand(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)
	m.input.SetValue("/quit")
	m, cmd := update(t, m, key(tea.KeyEnter))
	res := cmd()
	_, cmd = update(t, m, res)
	if cmd == nil {
		t.Fatal("no cmd after /quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T; want tea.QuitMsg", cmd())
	}
	if m.sh.ctx.Err() == nil {
		t.Error("context not cancelled on quit")
	}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	t.Parallel()

	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		deps, _ := testDeps(t)
		m := NewAppModel(deps)
		_, cmd := update(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%v returned nil cmd", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: cmd() = %T; want tea.QuitMsg", k, cmd())
		}
	}
}

func TestAppModel_CtrlLClearsBuffer(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	if err := ctrl.acc.Append([]byte("junk")); err != nil {
		t.Fatal(err)
	}
	drive(t, NewAppModel(deps), key(tea.KeyCtrlL))
	if got := ctrl.acc.Usage(); got != 0 {
		t.Errorf("Usage() = %d; want 0", got)
	}
	if !strings.Contains(scrollText(deps), "Read buffer cleared.") {
		t.Errorf("scrollback missing clear note")
	}
}

func TestAppModel_CtrlSSavesToDefaultPath(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	if err := ctrl.acc.Append([]byte("ABCD")); err != nil {
		t.Fatal(err)
	}
	drive(t, NewAppModel(deps), key(tea.KeyCtrlS))

	path := filepath.Join(deps.Settings.Save.Dir, "blanca-20240309-140507.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "ABCD" {
		t.Errorf("saved = %q; want ABCD", data)
	}
	if !strings.Contains(scrollText(deps), "Saved 4 B to "+path) {
		t.Errorf("scrollback = %q; want save message", scrollText(deps))
	}
}

func TestAppModel_SaveFailureIsReported(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)
	m.input.SetValue("/save " + filepath.Join(t.TempDir(), "missing", "out.bin"))
	drive(t, m, key(tea.KeyEnter))

	if !strings.Contains(scrollText(deps), "Unable to save:") {
		t.Errorf("scrollback = %q; want save error", scrollText(deps))
	}
}

func TestAppModel_TabCompletesCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/sta", "/status "},
		{"/q", "/quit "},
		{"/open COM3", "/open COM3"},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		deps, _ := testDeps(t)
		m := NewAppModel(deps)
		m.input.SetValue(tt.in)
		m, _ = update(t, m, key(tea.KeyTab))
		if got := m.input.Value(); got != tt.want {
			t.Errorf("tab on %q = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppModel_HelpOverlay(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 120})
	m, _ = update(t, m, key(tea.KeyF1))
	if _, ok := m.overlay.(HelpModel); !ok {
		t.Fatalf("overlay = %T; want HelpModel", m.overlay)
	}
	if !strings.Contains(m.View(), "/match") {
		t.Errorf("View() with help missing command table")
	}

	m = drive(t, m, key(tea.KeyEsc))
	if m.overlay != nil {
		t.Errorf("overlay = %T; want nil after esc", m.overlay)
	}
}

func TestAppModel_PortPickerOpensSelection(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	m := NewAppModel(deps)
	m = drive(t, m, key(tea.KeyCtrlP))
	picker, ok := m.overlay.(PortPickerModel)
	if !ok {
		t.Fatalf("overlay = %T; want PortPickerModel", m.overlay)
	}
	if picker.loading {
		t.Fatal("picker still loading after portsLoadedMsg")
	}

	m = drive(t, m, key(tea.KeyDown))
	m = drive(t, m, key(tea.KeyEnter))
	if m.overlay != nil {
		t.Errorf("overlay = %T; want nil after selection", m.overlay)
	}
	opens, _, _ := ctrl.snapshot()
	if len(opens) != 1 || opens[0] != "/dev/ttyUSB3" {
		t.Errorf("opens = %v; want [/dev/ttyUSB3]", opens)
	}
}

func TestAppModel_SessionEventUpdatesFooter(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	m := NewAppModel(deps)
	_ = ctrl.Open(context.Background(), "COM9", 57600)

	m, _ = update(t, m, SessionEventMsg{Event: session.Event{From: session.Opening, To: session.Open, Info: ctrl.Info()}})
	if !strings.Contains(m.footer.View(), "COM9 @ 57600") {
		t.Errorf("footer = %q; want COM9 @ 57600", m.footer.View())
	}
}

func TestAppModel_UsageTickRefreshesFooter(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	m := NewAppModel(deps)
	if err := ctrl.acc.Append(make([]byte, 512)); err != nil {
		t.Fatal(err)
	}
	m, cmd := update(t, m, usageTickMsg(testNow))
	if cmd == nil {
		t.Error("usage tick did not reschedule")
	}
	if !strings.Contains(m.footer.View(), "buf 512 B / 1.0 KiB (50%)") {
		t.Errorf("footer = %q; want 512 B usage", m.footer.View())
	}
}

func TestAppModel_SettingsReload(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)

	s := deps.Settings
	s.Display.Timestamps = false
	s.Outbound.LineEnding = "cr"
	s.Line.Name = "/dev/ttyNEW"
	m, _ = update(t, m, SettingsReloadedMsg{Settings: s})

	if deps.Renderer.Timestamps() {
		t.Error("timestamps still on after reload")
	}
	if got := deps.Renderer.LineEnding(); got != "cr" {
		t.Errorf("LineEnding() = %q; want cr", got)
	}
	if m.settings.Line.Name != "/dev/ttyNEW" {
		t.Errorf("settings.Line.Name = %q; want /dev/ttyNEW", m.settings.Line.Name)
	}

	m, _ = update(t, m, SettingsReloadedMsg{Err: errors.New("yaml: bad indent")})
	if !strings.Contains(scrollText(deps), "Configuration reload failed: yaml: bad indent") {
		t.Errorf("scrollback missing reload failure")
	}
	if m.settings.Line.Name != "/dev/ttyNEW" {
		t.Errorf("failed reload replaced settings")
	}
}

func TestAppModel_RemappedKeys(t *testing.T) {
	t.Parallel()

	deps, ctrl := testDeps(t)
	deps.Settings.Keys = map[string][]string{"open": {"f2"}, "help": {"f3"}}
	m := NewAppModel(deps)

	m, _ = update(t, m, key(tea.KeyCtrlO))
	if opens, _, _ := ctrl.snapshot(); len(opens) != 0 {
		t.Fatalf("ctrl+o opened %v after being remapped", opens)
	}
	m = drive(t, m, key(tea.KeyF2))
	if opens, _, _ := ctrl.snapshot(); len(opens) != 1 {
		t.Fatalf("opens = %v; want one open from f2", opens)
	}
	if !strings.Contains(m.footer.View(), "F3 help") {
		t.Errorf("footer = %q; want the remapped help hint", m.footer.View())
	}

	s := deps.Settings
	s.Keys = nil
	m, _ = update(t, m, SettingsReloadedMsg{Settings: s})
	if got := m.keys.ActionFor("ctrl+o"); got != keybindings.ActionOpen {
		t.Errorf("after reload ctrl+o = %q; want open", got)
	}
}

func TestAppModel_ScrollbackActivityRefreshesView(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 12})

	deps.Renderer.DisplayChunk([]byte("hello from the line"))
	cmd := m.waitForActivity()
	msg := cmd()
	if _, ok := msg.(scrollbackMsg); !ok {
		t.Fatalf("waitForActivity() = %T; want scrollbackMsg", msg)
	}
	m, next := update(t, m, msg)
	if next == nil {
		t.Error("scrollbackMsg did not re-arm the watcher")
	}
	if !strings.Contains(m.View(), "2:05:07 PM hello from the line") {
		t.Errorf("View() = %q; want the chunk", m.View())
	}
}

func TestAppModel_WaitForActivityStopsOnQuit(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t)
	m := NewAppModel(deps)
	cmd := m.waitForActivity()
	m.quit()
	if msg := cmd(); msg != nil {
		t.Errorf("waitForActivity after quit = %T; want nil", msg)
	}
}
