// Package watcher recursively watches a client project for source changes.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var raiseLimitOnce sync.Once

type Watcher struct {
	mutex sync.Mutex

	log    zerolog.Logger
	ignore map[string]struct{}

	watcher     *fsnotify.Watcher
	directories map[string]struct{}
	stop        chan struct{}
	closeOnce   sync.Once

	// EventsReady receives a value when a batch of events is
	// ready to be collected with GetEventsBatch.
	EventsReady chan struct{}

	events         *Events
	notifyListener func()
}

// New creates a watcher. Directories in ignore (and their children)
// are never watched, in addition to those matched by IgnoreFolder.
func New(ignore ...string) (*Watcher, error) {
	fswatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create watcher")
	}

	logger := log.With().Str("component", "watcher").Logger()
	raiseLimitOnce.Do(func() { raiseFileLimit(logger) })
	w := &Watcher{
		watcher:     fswatcher,
		log:         logger,
		ignore:      make(map[string]struct{}, len(ignore)),
		directories: make(map[string]struct{}),
		stop:        make(chan struct{}),
		EventsReady: make(chan struct{}, 1),
	}
	for _, dir := range ignore {
		w.ignore[filepath.Clean(dir)] = struct{}{}
	}

	// We debounce this to give the system time to process mass file updates
	d := debounce.New(50 * time.Millisecond)
	w.notifyListener = func() {
		d(func() {
			select {
			case w.EventsReady <- struct{}{}:
			default:
			}
		})
	}

	go w.listenForChangeEvents()

	return w, nil
}

func (w *Watcher) ignored(folder string) bool {
	if IgnoreFolder(folder) {
		return true
	}
	_, ok := w.ignore[folder]
	return ok
}

// RecursivelyWatch starts watching folder and all its subfolders.
func (w *Watcher) RecursivelyWatch(folder string) error {
	return filepath.WalkDir(folder, func(path string, info os.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "unable to walk directory %s", path)
		}
		if !info.IsDir() {
			return nil
		}

		folder := filepath.Clean(path)
		if w.ignored(folder) {
			return filepath.SkipDir
		}

		w.mutex.Lock()
		if _, found := w.directories[folder]; found {
			w.mutex.Unlock()
			return filepath.SkipDir
		}
		w.directories[folder] = struct{}{}
		w.mutex.Unlock() // unlock here to prevent reentrant locks during recursion

		if err := w.watcher.Add(folder); err != nil {
			return errors.Wrapf(err, "unable to add folder %s to watch", folder)
		}
		return nil
	})
}

func (w *Watcher) listenForChangeEvents() {
	for {
		select {
		case <-w.stop:
			_ = w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				w.handleCreateEvent(event.Name)
			case event.Op&fsnotify.Write == fsnotify.Write:
				w.handleWriteEvent(event.Name)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.handleDeleteEvent(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handleCreateEvent(path string) {
	if info, err := os.Stat(path); err != nil {
		w.log.Err(err).Str("path", path).Msg("unable to stat file")
	} else if info.IsDir() {
		if err := w.RecursivelyWatch(path); err != nil {
			w.log.Err(err).Str("path", path).Msg("unable to start watching new directory")
		}
		// Files may have been written into the directory before it was watched.
		w.recordTree(path)
	} else {
		w.recordEventInBatch(path, CREATED, info)
	}
}

// recordTree records a CREATED event for the directory dir and
// every regular file below it, skipping ignored folders.
func (w *Watcher) recordTree(dir string) {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && w.ignored(filepath.Clean(path)) {
				return filepath.SkipDir
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		w.recordEventInBatch(filepath.Clean(path), CREATED, info)
		return nil
	})
	if err != nil {
		w.log.Err(err).Str("path", dir).Msg("unable to record new directory contents")
	}
}

func (w *Watcher) handleDeleteEvent(path string) {
	path = filepath.Clean(path)

	// If it's a directory we're watching, stop watching it
	w.mutex.Lock()
	for watchedFolder := range w.directories {
		if watchedFolder == path || strings.HasPrefix(watchedFolder, path+string(filepath.Separator)) {
			_ = w.watcher.Remove(watchedFolder)
			delete(w.directories, watchedFolder)
		}
	}
	w.mutex.Unlock()

	w.recordEventInBatch(path, DELETED, nil)
}

func (w *Watcher) handleWriteEvent(path string) {
	if info, err := os.Stat(path); err != nil {
		w.log.Err(err).Str("path", path).Msg("unable to stat file")
	} else if !info.IsDir() {
		w.recordEventInBatch(path, MODIFIED, info)
	}
}

func (w *Watcher) recordEventInBatch(path string, event EventType, info os.FileInfo) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.events == nil {
		w.events = newEventBatch()
	}
	w.events.addEvent(path, event, info)
	w.notifyListener()
}

// GetEventsBatch returns the events recorded since the last call,
// or nil if there are none.
func (w *Watcher) GetEventsBatch() *Events {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	events := w.events
	w.events = nil

	return events
}

// Close stops watching. It is safe to call multiple times.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.stop)
	})
	return nil
}
