package eventfsm

import (
	"context"
	"errors"
	"sync"
)

// errNilFailure replaces a nil error passed to Promise.Fail
var errNilFailure = errors.New("promise failed without an error")

// Future is the result of an asynchronous computation. Handlers return a
// Future[Outcome]; firing an event returns a Future[any] holding either the
// machine itself or the value chosen by the handler.
//
// Callbacks registered on a future run synchronously on the goroutine that
// settles it.
type Future[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns an already completed future
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.settle(value, nil)
	return f
}

// Failed returns an already failed future
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Async runs fn on a new goroutine and returns a future for its result.
// When a handler returns it, the transition commits on that goroutine; a
// caller firing events concurrently must serialise those calls itself.
func Async[T any](fn func() (T, error)) *Future[T] {
	p := NewPromise[T]()
	go func() {
		v, err := fn()
		if err != nil {
			p.Fail(err)
			return
		}
		p.Complete(v)
	}()
	return p.Future()
}

// Await blocks until the future settles or ctx is done
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the future settles
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has completed or failed
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the result of the future without blocking.
// It returns ErrPending while the future has not settled.
func (f *Future[T]) Result() (T, error) {
	if !f.Settled() {
		var zero T
		return zero, ErrPending
	}
	return f.value, f.err
}

// onSettle registers fn to run once the future settles, immediately if it already has
func (f *Future[T]) onSettle(fn func(T, error)) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		fn(f.value, f.err)
		return
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}

func (f *Future[T]) settle(value T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value, f.err = value, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(value, err)
	}
	return true
}

// Promise is the write side of a Future
type Promise[T any] struct {
	future *Future[T]
}

// NewPromise creates a pending promise
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{future: newFuture[T]()}
}

// Future returns the read side of the promise
func (p *Promise[T]) Future() *Future[T] {
	return p.future
}

// Complete settles the promise with value. Returns false if it was already settled.
func (p *Promise[T]) Complete(value T) bool {
	return p.future.settle(value, nil)
}

// Fail settles the promise with err. Returns false if it was already settled.
func (p *Promise[T]) Fail(err error) bool {
	if err == nil {
		err = errNilFailure
	}
	var zero T
	return p.future.settle(zero, err)
}
