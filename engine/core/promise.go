package core

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Promise is a one-shot completion handle for an asynchronous load.
type Promise struct {
	done chan struct{}
	once sync.Once
	err  error
}

func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// ResolvedPromise returns a promise that is already complete.
func ResolvedPromise() *Promise {
	p := NewPromise()
	p.Resolve()
	return p
}

// RejectedPromise returns a promise that already failed with err.
func RejectedPromise(err error) *Promise {
	p := NewPromise()
	p.Reject(err)
	return p
}

func (p *Promise) Resolve() {
	p.complete(nil)
}

func (p *Promise) Reject(err error) {
	p.complete(err)
}

func (p *Promise) complete(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// IsDone reports whether the promise completed, without blocking.
func (p *Promise) IsDone() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Err is the rejection reason. Only meaningful once Done is closed.
func (p *Promise) Err() error {
	if !p.IsDone() {
		return nil
	}
	return p.err
}

// Wait blocks until the promise completes or ctx is cancelled.
func (p *Promise) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// All resolves once every promise resolved, or rejects with the first failure
// after all of them completed.
func All(promises ...*Promise) *Promise {
	out := NewPromise()
	go func() {
		var g errgroup.Group
		for _, p := range promises {
			p := p
			g.Go(func() error {
				<-p.done
				return p.err
			})
		}
		out.complete(g.Wait())
	}()
	return out
}
