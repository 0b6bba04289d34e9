// ABOUTME: JSON Lines display for monitor mode: one object per received chunk, built with easyjson's jwriter
// ABOUTME: Payloads are base64 so arbitrary bytes survive; status messages go to a separate renderer

package monitor

import (
	"io"
	"sync"
	"time"

	"github.com/mailru/easyjson/jwriter"

	"github.com/mauromedda/blanca-go/internal/log"
	"github.com/mauromedda/blanca-go/internal/render"
)

// jsonlDisplay writes {"seq","time","session","len","data"} records.
type jsonlDisplay struct {
	mu      sync.Mutex
	w       io.Writer
	msgs    *render.Renderer
	clock   func() time.Time
	seq     uint64
	session string
}

func newJSONLDisplay(w io.Writer, msgs *render.Renderer, clock func() time.Time) *jsonlDisplay {
	return &jsonlDisplay{w: w, msgs: msgs, clock: clock}
}

func (d *jsonlDisplay) setSession(id string) {
	d.mu.Lock()
	d.session = id
	d.mu.Unlock()
}

// DisplayChunk emits one record. Records are written whole, one per line.
func (d *jsonlDisplay) DisplayChunk(chunk []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++

	var jw jwriter.Writer
	jw.RawString(`{"seq":`)
	jw.Uint64(d.seq)
	jw.RawString(`,"time":`)
	jw.String(d.clock().UTC().Format(time.RFC3339Nano))
	jw.RawString(`,"session":`)
	jw.String(d.session)
	jw.RawString(`,"len":`)
	jw.Int(len(chunk))
	jw.RawString(`,"data":`)
	jw.Base64Bytes(chunk)
	jw.RawString("}\n")

	if _, err := jw.DumpTo(d.w); err != nil {
		log.Debug("monitor: jsonl write: %v", err)
	}
}

// DisplayMessage forwards status lines to the message renderer.
func (d *jsonlDisplay) DisplayMessage(text string, sev render.Severity) {
	d.msgs.DisplayMessage(text, sev)
}
