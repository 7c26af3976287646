package resources

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima2d/engine/core"
)

/**
 * @brief Watches asset directories and fires EVENT_CODE_ASSET_CHANGED for
 * every file the engine knows how to load that was created or written.
 * Listeners run on the watcher goroutine and must hand work over to the
 * render thread themselves.
 */
type Watcher struct {
	fsnotify *fsnotify.Watcher
	events   *core.EventBus

	mu       sync.Mutex
	isClosed bool
	done     chan struct{}
	stopped  chan struct{}
}

func NewWatcher(events *core.EventBus) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		events:   events,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go w.start()
	return w, nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (w *Watcher) AddRecursive(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return errors.New("watcher already closed")
	}
	return w.watchRecursive(name, false)
}

// RemoveRecursive stops watching the named directory and all sub-directories.
func (w *Watcher) RemoveRecursive(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return errors.New("watcher already closed")
	}
	return w.watchRecursive(name, true)
}

// Close stops the watcher goroutine. Safe to call more than once.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return
	}
	w.isClosed = true
	w.mu.Unlock()

	close(w.done)
	<-w.stopped
}

func (w *Watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handle(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			w.mu.Lock()
			if err := w.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("asset watcher: could not watch %s: %s", e.Name, err)
			}
			w.mu.Unlock()
		}
		return
	}
	// a removed directory can't be stat'ed, try to drop it from the watch list
	if e.Op&fsnotify.Remove != 0 {
		_ = w.fsnotify.Remove(e.Name)
		return
	}
	if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	path := filepath.Clean(e.Name)
	if DetermineResourceType(path) == ResourceTypeNone {
		return
	}
	core.LogDebug("asset changed: %s", path)
	w.events.Fire(core.EVENT_CODE_ASSET_CHANGED, w, core.EventContext{
		Data: &core.AssetEvent{Path: path},
	})
}

// watchRecursive adds or removes every directory under path.
func (w *Watcher) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return nil
		}
		if unWatch {
			return w.fsnotify.Remove(walkPath)
		}
		return w.fsnotify.Add(walkPath)
	})
}
