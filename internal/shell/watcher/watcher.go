// Package watcher reloads settings when the settings file changes.
package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/prism-io/prism-shell/internal/models"
)

// DefaultDebounce collapses bursts of writes to the same file.
const DefaultDebounce = 100 * time.Millisecond

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota
	EventSettingsInvalid
	EventSettingsRemoved
)

// Event is a debounced settings change.
type Event struct {
	Type     EventType
	Path     string
	Settings *models.Settings // set for EventSettingsChanged
	Err      error            // set for EventSettingsInvalid
}

// LoadFunc reads and validates a settings file.
type LoadFunc func(path string) (*models.Settings, error)

// Watcher watches a single settings file.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	path       string
	load       LoadFunc
	delay      time.Duration
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounceMu sync.Mutex
	debounce   *time.Timer
}

// New creates a watcher for path. load is called after each debounced change.
func New(path string, load LoadFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		path:       filepath.Clean(path),
		load:       load,
		delay:      DefaultDebounce,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start begins watching. The parent directory is watched so atomic
// replacements of the file are seen.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	log.Printf("[watcher] Watching %s", w.path)
	return nil
}

// Stop stops the watcher. Pending debounced reloads are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] Error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	// Rename covers atomic writes (write tmp, rename onto target).
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	ev := Event{Path: w.path}
	settings, err := w.load(w.path)
	switch {
	case err != nil:
		ev.Type = EventSettingsInvalid
		ev.Err = err
	case !fileExists(w.path):
		ev.Type = EventSettingsRemoved
		ev.Settings = settings
	default:
		ev.Type = EventSettingsChanged
		ev.Settings = settings
	}

	select {
	case w.eventsChan <- ev:
	case <-w.done:
	}
}
