package watcher

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a single fixture file for changes and invokes a callback,
// debounced so that an editor's burst of write/chmod/rename events during a
// single save collapses into one callback call.
type Watcher struct {
	path      string
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	onChange  func()
	done      chan struct{}
}

// Watch creates a Watcher for path. onChange is invoked, debounced by
// DefaultDebounceDuration, whenever the file is written, created, or
// renamed. Underlying fsnotify errors are logged and otherwise ignored —
// a watch failure should never crash a long-running `reachgraph watch`.
func Watch(path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watcher: watch directory %s: %w", dir, err)
	}

	w := &Watcher{
		path:      path,
		fsw:       fsw,
		debouncer: NewDebouncer(DefaultDebounceDuration),
		onChange:  onChange,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		absPath = w.path
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil {
				evAbs = ev.Name
			}
			if evAbs != absPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debouncer.Trigger(w.onChange)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases its fsnotify resources.
func (w *Watcher) Close() error {
	w.debouncer.Cancel()
	close(w.done)
	return w.fsw.Close()
}
