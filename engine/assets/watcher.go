package assets

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/bricklayer/engine/core"
)

type watchEntry struct {
	slot    int
	kind    RequestKind
	path    string
	lastMod time.Time
}

// Watcher tracks the modification time of every registered file from a
// single background goroutine and enqueues a ReloadRequest whenever a
// timestamp strictly increases. It never touches GPU state.
//
// The goroutine wakes on a fixed poll interval; fsnotify events on the
// watched directories just bring the next scan forward, so the reload
// feels instant on platforms with change notification and still works
// where there is none.
type Watcher struct {
	queue    *ReloadQueue
	interval time.Duration

	mu      sync.Mutex
	entries []*watchEntry

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	finished chan struct{}
}

// NewWatcher builds a watcher producing into queue. A failure to set up
// OS change notification is not fatal; the watcher degrades to pure
// polling.
func NewWatcher(queue *ReloadQueue, interval time.Duration) *Watcher {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		core.LogWarn("file notifications unavailable, falling back to polling only: %s", err)
		fsWatch = nil
	}
	return &Watcher{
		queue:    queue,
		interval: interval,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Track registers a file for one slot and kind. The current
// modification time becomes the baseline, so tracking never produces a
// request by itself; a missing file is tracked with a zero baseline
// and fires once it appears.
func (w *Watcher) Track(slot int, kind RequestKind, path string) {
	entry := &watchEntry{slot: slot, kind: kind, path: path}
	if st, err := os.Stat(path); err == nil {
		entry.lastMod = st.ModTime()
	} else {
		core.LogDebug("tracking %s %q before it exists", kind, path)
	}

	w.mu.Lock()
	w.entries = append(w.entries, entry)
	w.mu.Unlock()

	if w.fsnotify != nil {
		// Watch the parent directory: editors replace files by rename,
		// which drops a watch placed on the file itself.
		if err := w.fsnotify.Add(filepath.Dir(path)); err != nil {
			core.LogDebug("cannot watch directory of %q: %s", path, err)
		}
	}
}

// Start launches the background goroutine. Track must not be called
// afterwards.
func (w *Watcher) Start() {
	go w.run()
}

// Stop asks the goroutine to exit and waits for it.
func (w *Watcher) Stop() {
	close(w.done)
	<-w.finished
}

func (w *Watcher) run() {
	defer close(w.finished)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	var errs chan error
	if w.fsnotify != nil {
		events = w.fsnotify.Events
		errs = w.fsnotify.Errors
	}

	for {
		select {
		case <-ticker.C:
			w.Scan()

		case e := <-events:
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scanPath(e.Name)
			}

		case err := <-errs:
			core.LogError("file watcher: %s", err)

		case <-w.done:
			if w.fsnotify != nil {
				w.fsnotify.Close()
			}
			return
		}
	}
}

// Scan checks every tracked file once. Exported so the startup path
// can prime a scan deterministically; the background goroutine calls
// it on every tick.
func (w *Watcher) Scan() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range w.entries {
		w.check(entry)
	}
}

func (w *Watcher) scanPath(name string) {
	clean := filepath.Clean(name)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range w.entries {
		if filepath.Clean(entry.path) == clean {
			w.check(entry)
		}
	}
}

// check applies the watcher contract: enqueue on a strictly greater
// modification time and advance the recorded baseline at enqueue time,
// so a failed decode is not retried until the file changes again. A
// stat failure (deleted, locked mid-save) is treated as no change.
func (w *Watcher) check(entry *watchEntry) {
	st, err := os.Stat(entry.path)
	if err != nil {
		core.LogDebug("metadata unavailable for %q: %s", entry.path, err)
		return
	}
	if !st.ModTime().After(entry.lastMod) {
		return
	}

	entry.lastMod = st.ModTime()
	core.LogInfo("%s changed, scheduling %s reload for slot %d", entry.path, entry.kind, entry.slot)
	w.queue.Push(ReloadRequest{
		Slot: entry.slot,
		Kind: entry.kind,
		Path: entry.path,
	})
}
