// ABOUTME: Command wiring: builds a CommandContext whose callbacks drive the controller, renderer and buffer
// ABOUTME: Dispatch runs inside a tea.Cmd; cmdSideEffects carries UI-only signals back to Update

package interactive

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/blanca-go/internal/commands"
	"github.com/mauromedda/blanca-go/internal/log"
	"github.com/mauromedda/blanca-go/internal/render"
)

// cmdSideEffects captures signals from command callbacks that need to
// produce tea.Cmd or mutate AppModel after Dispatch returns.
type cmdSideEffects struct {
	quit bool
}

// buildCommandContext creates a CommandContext with every callback wired as
// a closure over the dependencies and a shared cmdSideEffects pointer.
// Callbacks may block; they run off the UI goroutine.
func (m AppModel) buildCommandContext(ctx context.Context) (*commands.CommandContext, *cmdSideEffects) {
	effects := &cmdSideEffects{}
	deps := m.deps
	settings := m.settings

	cc := &commands.CommandContext{
		Version:     deps.Version,
		DefaultLine: settings.Line.Name,
		DefaultRate: settings.Line.Rate,
		SaveAsBytes: settings.Save.AsBytes,
		Now:         deps.now,

		Open: func(name string, rate int) {
			_ = deps.Controller.Open(ctx, name, rate)
		},
		Close: func() {
			_ = deps.Controller.Close()
		},
		Send: func(text string) {
			if err := <-deps.Renderer.SubmitOutbound(ctx, text); err != nil {
				log.Debug("send: %v", err)
			}
		},
		Save: func(path string, asBytes, dump bool) {
			saveBuffer(deps, path, asBytes, dump)
		},
		Clear: func() {
			deps.Controller.Accumulator().Clear()
		},
		Match: func(pattern string) ([]commands.MatchResult, error) {
			hits, err := deps.Controller.Accumulator().Match(pattern)
			if err != nil {
				return nil, err
			}
			out := make([]commands.MatchResult, len(hits))
			for i, h := range hits {
				out[i] = commands.MatchResult{Offset: h.Start, Text: h.Text}
			}
			return out, nil
		},
		Status: func() commands.Status {
			return sessionStatus(deps)
		},
		SetTimestamps: deps.Renderer.SetTimestampPolicy,
		SetNewline:    deps.Renderer.SetNewlinePolicy,
		SetLineEnding: deps.Renderer.SetLineEnding,
		SavePath: func() string {
			return settings.DefaultSavePath(deps.now())
		},
		ExitFn: func() {
			effects.quit = true
		},
	}

	if deps.ListPorts != nil {
		cc.Ports = func() ([]string, error) {
			ports, err := deps.ListPorts()
			if err != nil {
				return nil, err
			}
			labels := make([]string, len(ports))
			for i, p := range ports {
				labels[i] = p.Label()
			}
			return labels, nil
		}
	}

	return cc, effects
}

// runCommand dispatches text off the UI goroutine.
func (m AppModel) runCommand(text string) tea.Cmd {
	cc, effects := m.buildCommandContext(m.sh.ctx)
	reg := m.cmdRegistry
	return func() tea.Msg {
		out, err := reg.Dispatch(cc, text)
		return commandResultMsg{input: text, output: out, err: err, effects: *effects}
	}
}

// saveBuffer writes the accumulator to path and reports the outcome on the
// terminal surface.
func saveBuffer(deps AppDeps, path string, asBytes, dump bool) {
	n, err := deps.Controller.Accumulator().SaveFile(path, asBytes, dump)
	if err != nil {
		log.Error("save %s: %v", path, err)
		deps.Renderer.DisplayMessagef(render.Error, "Unable to save: %v", err)
		return
	}
	log.Info("saved %d bytes to %s", n, path)
	deps.Renderer.DisplayMessagef(render.Info, "Saved %s to %s", commands.FormatBytes(n), path)
}

func sessionStatus(deps AppDeps) commands.Status {
	info := deps.Controller.Info()
	acc := deps.Controller.Accumulator()
	return commands.Status{
		State:      deps.Controller.State().String(),
		Line:       info.LineName,
		Rate:       info.Rate,
		ID:         info.ID,
		Detail:     info.Detail,
		OpenedAt:   info.OpenedAt,
		Used:       acc.Usage(),
		Limit:      acc.Limit(),
		Timestamps: deps.Renderer.Timestamps(),
		Newline:    deps.Renderer.Newline(),
		LineEnding: deps.Renderer.LineEnding(),
		LastError:  deps.Controller.LastError(),
	}
}

// keyOp wraps a blocking controller call as a tea.Cmd.
func keyOp(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: fn()}
	}
}

func errText(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
