package resources

import (
	"context"
	"sync"

	"github.com/spaghettifunk/anima2d/engine/core"
	"golang.org/x/sync/errgroup"
)

/**
 * @brief Collects outstanding loads and the continuations that must run once
 * they completed. Continuations run on the goroutine calling WaitOnPromises,
 * which is where GPU uploads are allowed to happen.
 */
type Synchronizer struct {
	mu       sync.Mutex
	promises []*core.Promise
	deferred []func() error
}

func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

func (s *Synchronizer) PushPromise(p *core.Promise) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promises = append(s.promises, p)
}

// Defer registers fn to run after the next wait observed every pending load.
func (s *Synchronizer) Defer(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deferred = append(s.deferred, fn)
}

// Pending reports the number of promises not yet waited on.
func (s *Synchronizer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.promises)
}

func (s *Synchronizer) hasWork() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.promises) > 0 || len(s.deferred) > 0
}

// WaitOnPromises blocks until every pushed promise completed, then runs the
// deferred continuations in registration order. The first continuation error
// is returned, or else the first rejected load. If ctx is cancelled first,
// nothing is run and the work stays queued.
func (s *Synchronizer) WaitOnPromises(ctx context.Context) error {
	s.mu.Lock()
	promises := s.promises
	deferred := s.deferred
	s.promises = nil
	s.deferred = nil
	s.mu.Unlock()

	var g errgroup.Group
	for _, p := range promises {
		p := p
		g.Go(func() error {
			select {
			case <-p.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.promises = append(promises, s.promises...)
		s.deferred = append(deferred, s.deferred...)
		s.mu.Unlock()
		return err
	}

	var firstErr error
	for _, fn := range deferred {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		for _, p := range promises {
			if err := p.Err(); err != nil {
				firstErr = err
				break
			}
		}
	}

	// continuations may have queued more work
	if s.hasWork() {
		if err := s.WaitOnPromises(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
