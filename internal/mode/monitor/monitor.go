// ABOUTME: Headless monitor mode: opens one line, streams received data to stdout, forwards stdin lines
// ABOUTME: Output is the stamped text view or one JSON object per chunk; stops on signal or line drop

package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mauromedda/blanca-go/internal/buffer"
	"github.com/mauromedda/blanca-go/internal/config"
	"github.com/mauromedda/blanca-go/internal/eventbus"
	"github.com/mauromedda/blanca-go/internal/line"
	"github.com/mauromedda/blanca-go/internal/log"
	"github.com/mauromedda/blanca-go/internal/render"
	"github.com/mauromedda/blanca-go/internal/session"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
)

// shutdownTimeout bounds how long the final close may take.
const shutdownTimeout = 5 * time.Second

var errSessionEnded = errors.New("session ended")

// Config configures one monitor run.
type Config struct {
	Line     string
	Rate     int
	Format   string // "text" (default) or "jsonl"
	SavePath string // save the buffer here on exit when set
	AsBytes  bool
	Dump     bool
}

// Deps provides the collaborators for monitor mode. Nil streams default to
// the process's standard streams.
type Deps struct {
	Driver   line.Driver
	Settings config.Settings
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Clock    func() time.Time
	// Signals overrides the signals that stop the run; nil means SIGINT and SIGTERM.
	Signals []os.Signal
}

func (d *Deps) defaults() {
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Signals == nil {
		d.Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
}

// Run opens cfg.Line and streams until ctx is cancelled, a stop signal
// arrives, or the line goes away. A line that drops or a buffer that fills up
// is reported as an error; a requested stop is not.
func Run(ctx context.Context, cfg Config, deps Deps) error {
	deps.defaults()
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	if cfg.Format != FormatText && cfg.Format != FormatJSONL {
		return fmt.Errorf("unknown format %q (want %s or %s)", cfg.Format, FormatText, FormatJSONL)
	}

	ctx, stop := signal.NotifyContext(ctx, deps.Signals...)
	defer stop()

	s := deps.Settings
	// Status messages share stdout with text output; with jsonl they move to
	// stderr so stdout stays machine-readable.
	msgOut := deps.Stdout
	if cfg.Format == FormatJSONL {
		msgOut = deps.Stderr
	}
	r := render.New(msgOut,
		render.WithClock(deps.Clock),
		render.WithStyles(stylesFor(msgOut)),
		render.WithTimestamps(s.Display.Timestamps),
		render.WithNewline(s.Display.Newline),
		render.WithLineEnding(s.Outbound.LineEnding),
	)

	var display session.Display = r
	var jsonl *jsonlDisplay
	if cfg.Format == FormatJSONL {
		jsonl = newJSONLDisplay(deps.Stdout, r, deps.Clock)
		display = jsonl
	}

	acc := buffer.New(s.Buffer.MaxBytes)
	bus := eventbus.New[session.Event]()
	ended := make(chan struct{})
	var endOnce sync.Once
	bus.Subscribe(func(ev session.Event) {
		switch {
		case ev.To == session.Open && jsonl != nil:
			jsonl.setSession(ev.Info.ID)
		case ev.To == session.Idle && ev.From != session.Opening:
			endOnce.Do(func() { close(ended) })
		}
	})

	ctrl := session.NewController(deps.Driver, acc, display,
		session.WithEvents(bus),
		session.WithClock(deps.Clock),
	)
	r.SetOutbound(ctrl)

	if err := ctrl.Open(ctx, cfg.Line, cfg.Rate); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-ended:
			return errSessionEnded
		case <-gctx.Done():
			return nil
		}
	})
	if deps.Stdin != nil {
		lines := scanLines(deps.Stdin)
		g.Go(func() error {
			return forwardInput(gctx, lines, r)
		})
	}
	waitErr := g.Wait()
	if waitErr != nil && !errors.Is(waitErr, errSessionEnded) {
		log.Warn("monitor: %v", waitErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ctrl.Shutdown(shutdownCtx); err != nil {
		log.Error("monitor: shutdown: %v", err)
	}
	log.Info("monitor: %s finished, %d bytes received", cfg.Line, acc.Usage())

	if cfg.SavePath != "" {
		n, err := acc.SaveFile(cfg.SavePath, cfg.AsBytes, cfg.Dump)
		if err != nil {
			r.DisplayMessagef(render.Error, "Unable to save: %v", err)
			return err
		}
		r.DisplayMessagef(render.Info, "Saved %d bytes to %s", n, cfg.SavePath)
	}

	if err := ctrl.LastError(); err != nil &&
		(errors.Is(err, session.ErrLineClosedUnexpectedly) || errors.Is(err, buffer.ErrExhausted)) {
		return err
	}
	return nil
}

// scanLines reads r line by line in its own goroutine. Reads on a terminal
// cannot be interrupted, so the goroutine lives until r ends.
func scanLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			out <- sc.Text()
		}
		if err := sc.Err(); err != nil {
			log.Debug("monitor: stdin: %v", err)
		}
	}()
	return out
}

// forwardInput sends each stdin line as outbound text until ctx ends. Write
// failures are already reported by the session, so they do not stop the run.
func forwardInput(ctx context.Context, lines <-chan string, r *render.Renderer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case text, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if err := <-r.SubmitOutbound(ctx, text); err != nil {
				log.Debug("monitor: send: %v", err)
			}
		}
	}
}

// stylesFor colors output only when w is a terminal.
func stylesFor(w io.Writer) render.Styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return render.DefaultStyles()
	}
	return render.PlainStyles()
}
