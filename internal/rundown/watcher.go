package rundown

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write before
// reloading. Editors often write a file in several steps.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a rundown file when it changes on disk and hands each
// successfully parsed show to OnChange. Files that fail to parse are logged
// and skipped, so the running session keeps its last good rundown.
type Watcher struct {
	path     string
	onChange func(*Show)
	debounce time.Duration
	logger   Logger
}

// NewWatcher creates a watcher for path. onChange is called from the
// watcher goroutine.
func NewWatcher(path string, onChange func(*Show)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the watcher.
func (w *Watcher) SetLogger(logger Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file so atomic-rename saves are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	target := filepath.Clean(w.path)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	w.logger.Info("watching rundown file", "path", target)

	// A nil channel blocks until the first event arms the timer.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("rundown file changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("rundown watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	show, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("rundown reload failed, keeping previous version", "path", w.path, "error", err)
		return
	}
	w.logger.Info("rundown reloaded", "path", w.path, "show_id", show.ID, "items", Build(show).Len())
	if w.onChange != nil {
		w.onChange(show)
	}
}
