package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ExecFuture represents the result of an asynchronous computation that only returns an error.
type ExecFuture struct {
	err  error
	once sync.Once
	done chan struct{}
}

// Await waits for the asynchronous function to complete and returns its error.
func (f *ExecFuture) Await() error {
	<-f.done
	return f.err
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// If the timeout occurs before completion, returns ErrTimeout.
func (f *ExecFuture) AwaitWithTimeout(timeout time.Duration) error {
	select {
	case <-f.done:
		return f.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *ExecFuture) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exec executes a function asynchronously that only returns an error.
// The function accepts a context.Context and a parameter of any type T, and returns error.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	f := &ExecFuture{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine leak when context is pre-canceled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		err := fn(ctx, param)

		f.once.Do(func() {
			f.err = err
		})
	}()

	return f
}

// ExecAll waits for every future to complete, even after one of them failed,
// and returns all non-nil errors joined together.
func ExecAll(futures ...*ExecFuture) error {
	errs := make([]error, 0, len(futures))
	for _, future := range futures {
		if err := future.Await(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
