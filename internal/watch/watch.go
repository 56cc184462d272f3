// Package watch re-runs a callback whenever a project data file changes
// on disk, for ganttcli's --watch mode.
package watch

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"ganttcore/internal/core"
)

var logger = core.NewLogger("[watch] ")

// Watch starts watching path and invokes onChange once per write or create
// event.
// The returned stop func closes the underlying watcher; call it when done.
func Watch(path string, onChange func()) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	done := make(chan struct{})
	go watchLoop(watcher, onChange, done)

	stop = func() {
		close(done)
		watcher.Close()
	}
	return stop, nil
}

func watchLoop(watcher *fsnotify.Watcher, onChange func(), done chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Info("project file changed: %s", event.Name)
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("file watcher error: %v", err)

		case <-done:
			return
		}
	}
}
