package renderer_test

import (
	"context"
	"io"
	"sync"

	"github.com/spaghettifunk/anima2d/engine/core"
)

func init() {
	core.SetLogOutput(io.Discard)
}

// textCache is an in-memory TextSource that resolves loads immediately.
type textCache struct {
	mu      sync.Mutex
	files   map[string]string
	cached  map[string]string
	loads   int
	unloads int
}

func newTextCache(files map[string]string) *textCache {
	return &textCache{files: files, cached: map[string]string{}}
}

func (t *textCache) Load(path string) *core.Promise {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loads++
	src, ok := t.files[path]
	if !ok {
		return core.RejectedPromise(core.ErrFatalInit)
	}
	t.cached[path] = src
	return core.ResolvedPromise()
}

func (t *textCache) Reload(path string) *core.Promise {
	return t.Load(path)
}

func (t *textCache) Get(path string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.cached[path]
	return s, ok
}

func (t *textCache) Unload(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.cached[path]
	delete(t.cached, path)
	t.unloads++
	return ok
}

// loadSync collects promises and continuations and runs them on wait.
type loadSync struct {
	promises []*core.Promise
	deferred []func() error
}

func (s *loadSync) PushPromise(p *core.Promise) { s.promises = append(s.promises, p) }
func (s *loadSync) Defer(fn func() error) { s.deferred = append(s.deferred, fn) }

func (s *loadSync) wait() error {
	for _, p := range s.promises {
		_ = p.Wait(context.Background())
	}
	var first error
	for _, fn := range s.deferred {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	s.promises, s.deferred = nil, nil
	return first
}
