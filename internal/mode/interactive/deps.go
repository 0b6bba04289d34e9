// ABOUTME: Dependency injection struct for the interactive app
// ABOUTME: The controller is consumed through an interface so tests can drive it with fake lines

package interactive

import (
	"context"
	"time"

	"github.com/mauromedda/blanca-go/internal/buffer"
	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/eventbus"
	"github.com/mauromedda/blanca-go/internal/line"
	"github.com/mauromedda/blanca-go/internal/render"
	"github.com/mauromedda/blanca-go/internal/session"
)

// Controller is the part of session.Controller the UI drives.
type Controller interface {
	Open(ctx context.Context, lineName string, rate int) error
	Close() error
	State() session.State
	Info() session.Info
	LastError() error
	Accumulator() *buffer.Accumulator
}

// AppDeps bundles all dependencies for the interactive app.
type AppDeps struct {
	Controller Controller
	Renderer   *render.Renderer
	Scrollback *Scrollback
	Events     *eventbus.Bus[session.Event]
	Settings   config.Settings
	Version    string

	// ListPorts enumerates selectable lines. Nilable.
	ListPorts func() ([]line.PortInfo, error)
	// Reload re-reads settings after a config file change. Nilable.
	Reload func() (config.Settings, error)
	// ConfigPaths are watched for changes when Reload is set.
	ConfigPaths []string

	Now func() time.Time
}

func (d AppDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
