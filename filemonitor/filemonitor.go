// Package filemonitor watches the server's files on disk and reports changes,
// gathered into batches so that one logical change (a jar replaced by a build,
// a copy landing in several writes) produces one notification.
package filemonitor

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Mooling0602/MCDRServerRunner/runlog"
)

// DefaultFileChangeDelay is the window during which further changes are
// folded into the same batch.
const DefaultFileChangeDelay = 300 * time.Millisecond

type FileMonitor interface {
	Add(path string) error
	// Listen returns a channel of change batches. The channel is closed
	// when the monitor is closed.
	Listen() <-chan []string
	Close() error
}

// changesWorthReporting filters out chmod and create noise; only content
// changes and replacement matter for a running server.
const changesWorthReporting = fsnotify.Write | fsnotify.Remove | fsnotify.Rename

type fsnotifyMonitor struct {
	watcher *fsnotify.Watcher
	delay   time.Duration
	changes chan string
	batches chan []string
}

func NewFileMonitor(fileChangeDelay time.Duration) (FileMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	m := &fsnotifyMonitor{
		watcher: watcher,
		delay:   fileChangeDelay,
		changes: make(chan string),
		batches: make(chan []string),
	}

	go m.watch()
	go m.gather()

	return m, nil
}

func (m *fsnotifyMonitor) Add(path string) error {
	return m.watcher.Add(path)
}

func (m *fsnotifyMonitor) Listen() <-chan []string {
	return m.batches
}

func (m *fsnotifyMonitor) Close() error {
	return m.watcher.Close()
}

func (m *fsnotifyMonitor) watch() {
	defer close(m.changes)
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&changesWorthReporting == 0 {
				continue
			}
			m.changes <- event.Name
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			runlog.Trace("file monitor: %v", err)
		}
	}
}

// gather folds changes arriving within delay of the first one into a single
// batch, the same change-collection window the wrapper is willing to sit on
// before bothering the operator.
func (m *fsnotifyMonitor) gather() {
	defer close(m.batches)
	for first := range m.changes {
		batch := map[string]bool{first: true}

		deadline := time.After(m.delay)
	gathering:
		for {
			select {
			case path, ok := <-m.changes:
				if !ok {
					break gathering
				}
				batch[path] = true
			case <-deadline:
				break gathering
			}
		}

		paths := make([]string, 0, len(batch))
		for path := range batch {
			paths = append(paths, path)
		}
		m.batches <- paths
	}
}
