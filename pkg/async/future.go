package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	once   sync.Once
	done   chan struct{}
}

// Await waits for the computation to complete and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for the computation with a timeout.
// Returns the zero value and ErrTimeout if the timeout elapses first.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes fn on its own goroutine and returns a Future for its result.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		result, err := fn(ctx, param)

		f.once.Do(func() {
			f.result = result
			f.err = err
		})
	}()

	return f
}

// WaitAll waits for all futures and returns their results in order.
// Returns the first error encountered after every future has completed.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var firstErr error
	for i, future := range futures {
		result, err := future.Await()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		results[i] = result
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
