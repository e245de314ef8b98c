// Package watch reports edits made to a state document by other programs.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of file events into one notification.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches one file. Its directory is watched so that atomic
// replacements by rename are seen too.
type Watcher struct {
	path     string
	onChange func(context.Context) error
	debounce time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
}

// New returns a watcher calling onChange after path was created, written,
// renamed or removed. debounce <= 0 uses DefaultDebounce.
func New(path string, onChange func(context.Context) error, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Watcher{path: filepath.Clean(path), onChange: onChange, debounce: debounce, logger: logger}
}

// Start begins watching. The returned function stops it; cancelling ctx
// has the same effect.
func (w *Watcher) Start(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		cancel()
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !w.relevant(ev) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				if err != nil {
					w.logger.Warn("fsnotify error", "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-changes:
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(w.debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if err := w.onChange(ctx); err != nil {
					w.logger.Error("reload failed", "path", w.path, "err", err)
				}
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()

	return func() { w.stopOnce.Do(cancel) }, nil
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
