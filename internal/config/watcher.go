// ABOUTME: fsnotify-based watcher for config hot-reload
// ABOUTME: Watches parent directories so files created after startup are noticed; debounces bursts

package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls onChange when any monitored file is written, created, renamed
// or removed. Editors often write through a temp file and rename, so events
// are matched by path inside the watched directories.
type Watcher struct {
	paths    map[string]struct{}
	onChange func()
	debounce time.Duration

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher over paths. Directories that do not exist are
// skipped; at least one watchable directory is required.
func NewWatcher(paths []string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}

	w := &Watcher{
		paths:    make(map[string]struct{}, len(paths)),
		onChange: onChange,
		debounce: 150 * time.Millisecond,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		clean := filepath.Clean(p)
		w.paths[clean] = struct{}{}
		dirs[filepath.Dir(clean)] = struct{}{}
	}

	watched := 0
	for dir := range dirs {
		if err := fsw.Add(dir); err == nil {
			watched++
		}
	}
	if watched == 0 {
		_ = fsw.Close()
		return nil, fmt.Errorf("no config directory to watch")
	}
	return w, nil
}

// SetDebounce overrides the quiet period between the last event and onChange.
// Must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins delivering events in a goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop halts the watcher. Safe to call multiple times and concurrently.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fsw.Close()
	})
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if _, ok := w.paths[filepath.Clean(ev.Name)]; !ok {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
