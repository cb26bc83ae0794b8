// Package credwatch watches the shared AWS credential files for changes.
package credwatch

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/aws-costs-tui/internal/logger"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 500 * time.Millisecond

// ErrNothingToWatch is returned when none of the files' directories exist.
var ErrNothingToWatch = errors.New("no credential file directory to watch")

// EventType defines the type of watcher event.
type EventType int

const (
	EventFileChanged EventType = iota
	EventError
)

// Event represents a watcher event.
type Event struct {
	Type  EventType
	Path  string
	Error error
}

// Watcher reports changes to a fixed set of files.
type Watcher struct {
	mu        sync.Mutex
	files     map[string]struct{}
	watcher   *fsnotify.Watcher
	eventChan chan Event
	stopChan  chan struct{}
	debounce  time.Duration
	timers    map[string]*time.Timer
	closeOnce sync.Once
}

// New starts watching paths. Directories are watched rather than the files
// so that files created or replaced later are still seen. Missing
// directories are skipped.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		files:     make(map[string]struct{}),
		watcher:   fw,
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		w.files[clean] = struct{}{}
		dirs[filepath.Dir(clean)] = struct{}{}
	}

	watched := 0
	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Debug("skipping credential directory", "dir", dir, "error", err)
			continue
		}
		if err := fw.Add(dir); err != nil {
			logger.Warn("failed to watch credential directory", "dir", dir, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		if closeErr := fw.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, ErrNothingToWatch
	}

	go w.watchLoop()
	return w, nil
}

// Events returns the channel of debounced change notifications.
func (w *Watcher) Events() <-chan Event {
	return w.eventChan
}

// watchLoop handles file system events with debouncing.
func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			path := filepath.Clean(event.Name)
			if _, tracked := w.files[path]; !tracked {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule(path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendEvent(Event{Type: EventError, Error: err})

		case <-w.stopChan:
			return
		}
	}
}

// schedule restarts the debounce timer for path. Each file has its own timer
// so changes to different files are all reported.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopChan:
			return
		default:
		}
		logger.Info("credential file changed", "path", path)
		w.sendEvent(Event{Type: EventFileChanged, Path: path})
	})
}

// sendEvent sends an event, dropping the oldest one when the buffer is full.
func (w *Watcher) sendEvent(event Event) {
	select {
	case w.eventChan <- event:
	default:
		select {
		case <-w.eventChan:
		default:
		}
		select {
		case w.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		for _, timer := range w.timers {
			timer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}
