// Package async provides the single-completion handle returned by
// asynchronous invocation closures.
package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Handle is a result that becomes available later. It completes exactly
// once, either with a value or with an error.
type Handle[T any] struct {
	id   uuid.UUID
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// New creates a pending handle and the function that completes it.
// Only the first call to complete has any effect.
func New[T any]() (*Handle[T], func(T, error)) {
	h := &Handle[T]{id: uuid.New(), done: make(chan struct{})}
	return h, h.complete
}

func (h *Handle[T]) complete(v T, err error) {
	h.once.Do(func() {
		h.val = v
		h.err = err
		close(h.done)
	})
}

// Completed returns a handle that already holds v.
func Completed[T any](v T) *Handle[T] {
	h, complete := New[T]()
	complete(v, nil)
	return h
}

// Faulted returns a handle that already holds err.
func Faulted[T any](err error) *Handle[T] {
	h, complete := New[T]()
	var zero T
	complete(zero, err)
	return h
}

// Go runs fn on a new goroutine and completes the handle with its result.
// A panic inside fn faults the handle instead of crashing the process.
func Go[T any](fn func() (T, error)) *Handle[T] {
	h, complete := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				complete(zero, panicError(r))
			}
		}()
		complete(fn())
	}()
	return h
}

// Then forwards the outcome of src, transformed by fn, into a new handle
// without blocking the caller.
func Then[T, U any](src *Handle[T], fn func(T, error) (U, error)) *Handle[U] {
	return Go(func() (U, error) {
		<-src.done
		return fn(src.val, src.err)
	})
}

// ID identifies the handle in trace output.
func (h *Handle[T]) ID() uuid.UUID {
	return h.id
}

// Done is closed once the handle has completed.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Result returns the outcome without waiting. ok is false while pending.
func (h *Handle[T]) Result() (v T, err error, ok bool) {
	select {
	case <-h.done:
		return h.val, h.err, true
	default:
		return v, nil, false
	}
}

// Await blocks until the handle completes or ctx is done. Giving up on
// ctx does not cancel the work behind the handle.
func (h *Handle[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// PanicError carries a value recovered from a panicking async closure.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: panic: %v", e.Value)
}

// Unwrap exposes a recovered error value to errors.Is/As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func panicError(r any) error {
	return &PanicError{Value: r}
}
