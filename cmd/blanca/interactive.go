// ABOUTME: Wires the interactive TUI: driver, scrollback, renderer, accumulator, session controller
// ABOUTME: Logs go to a file while the TUI owns the terminal; the session is shut down on exit

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mauromedda/blanca-go/internal/buffer"
	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/eventbus"
	"github.com/mauromedda/blanca-go/internal/line"
	"github.com/mauromedda/blanca-go/internal/log"
	"github.com/mauromedda/blanca-go/internal/mode/interactive"
	"github.com/mauromedda/blanca-go/internal/render"
	"github.com/mauromedda/blanca-go/internal/session"
)

const shutdownTimeout = 5 * time.Second

func runInteractive(f globalFlags) error {
	settings, cwd, err := loadSettings(f)
	if err != nil {
		return err
	}

	logPath := settings.LogFile()
	if err := config.EnsureDir(filepath.Dir(logPath)); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	if err := log.OpenFile(logPath); err != nil {
		return err
	}
	defer log.Close()

	driver, err := line.Resolve(settings.Line.Driver, settings.Line.ReadTimeout)
	if err != nil {
		return err
	}

	sb := interactive.NewScrollback(settings.Display.ScrollbackLines)
	r := render.New(sb,
		render.WithStyles(render.DefaultStyles()),
		render.WithTimestamps(settings.Display.Timestamps),
		render.WithNewline(settings.Display.Newline),
		render.WithLineEnding(settings.Outbound.LineEnding),
	)
	acc := buffer.New(settings.Buffer.MaxBytes)
	bus := eventbus.New[session.Event]()
	ctrl := session.NewController(driver, acc, r, session.WithEvents(bus))
	r.SetOutbound(ctrl)

	log.Info("blanca %s starting (driver %s)", version, settings.Line.Driver)

	runErr := interactive.Run(interactive.AppDeps{
		Controller: ctrl,
		Renderer:   r,
		Scrollback: sb,
		Events:     bus,
		Settings:   *settings,
		Version:    version,
		ListPorts:  line.ListPorts,
		Reload: func() (config.Settings, error) {
			s, err := config.LoadAll(cwd, f.overrides())
			if err != nil {
				return config.Settings{}, err
			}
			return *s, nil
		},
		ConfigPaths: []string{config.GlobalConfigFile(), config.ProjectConfigFile(cwd)},
	})

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ctrl.Shutdown(ctx); err != nil {
		log.Warn("shutdown: %v", err)
	}
	return runErr
}
