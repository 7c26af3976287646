package resources

import (
	"sort"
	"sync"

	"github.com/spaghettifunk/anima2d/engine/core"
)

// DecodeFunc reads and parses the resource stored at path.
type DecodeFunc[T any] func(path string) (T, error)

type entry[T any] struct {
	value    T
	refCount int
	loaded   bool
	promise  *core.Promise
}

/**
 * @brief A reference counted cache of decoded resources keyed by path.
 * Loading an already registered path shares the existing entry; the value is
 * dropped once every Load has been matched by an Unload.
 */
type Map[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
	decode  DecodeFunc[T]
	sync    *Synchronizer
	release func(path string, value T)
}

// NewMap creates a map whose loads are registered with loads, if not nil.
func NewMap[T any](decode DecodeFunc[T], loads *Synchronizer) *Map[T] {
	return &Map[T]{
		entries: make(map[string]*entry[T]),
		decode:  decode,
		sync:    loads,
	}
}

// OnRelease sets a hook invoked when a loaded value leaves the map.
func (m *Map[T]) OnRelease(fn func(path string, value T)) {
	m.release = fn
}

// Load starts decoding path in the background, or takes another reference
// on it if it is already registered.
func (m *Map[T]) Load(path string) *core.Promise {
	p, _ := m.load(path)
	return p
}

// load also reports whether this call created the entry.
func (m *Map[T]) load(path string) (*core.Promise, bool) {
	m.mu.Lock()
	if e, ok := m.entries[path]; ok {
		e.refCount++
		m.mu.Unlock()
		return e.promise, false
	}
	e := &entry[T]{refCount: 1, promise: core.NewPromise()}
	m.entries[path] = e
	m.mu.Unlock()

	if m.sync != nil {
		m.sync.PushPromise(e.promise)
	}
	go m.fetch(path, e)
	return e.promise, true
}

func (m *Map[T]) fetch(path string, e *entry[T]) {
	value, err := m.decode(path)

	m.mu.Lock()
	current := m.entries[path] == e
	if err != nil {
		if current {
			delete(m.entries, path)
		}
		m.mu.Unlock()
		core.LogError("failed to load %s: %s", path, err)
		e.promise.Reject(err)
		return
	}
	if current {
		e.value = value
		e.loaded = true
	}
	m.mu.Unlock()
	e.promise.Resolve()
}

// Reload decodes path again and swaps the cached value in place, keeping its
// reference count. Paths not registered are loaded instead.
func (m *Map[T]) Reload(path string) *core.Promise {
	m.mu.RLock()
	e, ok := m.entries[path]
	m.mu.RUnlock()
	if !ok {
		return m.Load(path)
	}

	p := core.NewPromise()
	go func() {
		value, err := m.decode(path)
		if err != nil {
			core.LogError("failed to reload %s: %s", path, err)
			p.Reject(err)
			return
		}
		m.mu.Lock()
		if m.entries[path] == e {
			e.value = value
			e.loaded = true
		}
		m.mu.Unlock()
		p.Resolve()
	}()
	return p
}

// Get returns the value once it finished loading.
func (m *Map[T]) Get(path string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[path]
	if !ok || !e.loaded {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Has reports whether path is registered, loaded or still in flight.
func (m *Map[T]) Has(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[path]
	return ok
}

// Unload drops one reference. It returns false if path was not registered.
func (m *Map[T]) Unload(path string) bool {
	m.mu.Lock()
	e, ok := m.entries[path]
	if !ok {
		m.mu.Unlock()
		return false
	}
	e.refCount--
	if e.refCount > 0 {
		m.mu.Unlock()
		return true
	}
	delete(m.entries, path)
	m.mu.Unlock()

	if e.loaded && m.release != nil {
		m.release(path, e.value)
	}
	return true
}

func (m *Map[T]) RefCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[path]; ok {
		return e.refCount
	}
	return 0
}

// Paths lists the registered paths in lexical order.
func (m *Map[T]) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.entries))
	for p := range m.entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
