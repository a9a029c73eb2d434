package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrymomot/certkeeper/pkg/async"
)

func TestAsyncResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	future := async.Async(ctx, "privkey.pem", func(ctx context.Context, name string) ([]byte, error) {
		time.Sleep(20 * time.Millisecond)
		return []byte(name), nil
	})

	data, err := future.Await()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != "privkey.pem" {
		t.Errorf("Expected %q, got %q", "privkey.pem", data)
	}
}

func TestAsyncConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sleep := func(ctx context.Context, ms int) (int, error) {
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return ms, nil
	}

	start := time.Now()
	results, err := async.WaitAll(
		async.Async(ctx, 100, sleep),
		async.Async(ctx, 100, sleep),
	)
	duration := time.Since(start)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 2 || results[0] != 100 || results[1] != 100 {
		t.Errorf("Unexpected results: %v", results)
	}
	if duration >= 190*time.Millisecond {
		t.Errorf("Expected futures to run concurrently, took %v", duration)
	}
}

func TestWaitAllError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	expectedErr := errors.New("read failed")

	results, err := async.WaitAll(
		async.Async(ctx, 0, func(ctx context.Context, _ int) (string, error) { return "ok", nil }),
		async.Async(ctx, 0, func(ctx context.Context, _ int) (string, error) { return "", expectedErr }),
	)

	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected error '%v', got: %v", expectedErr, err)
	}
	if results != nil {
		t.Errorf("Expected nil results on error, got: %v", results)
	}
}

func TestFutureAwaitWithTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	future := async.Async(ctx, 200, func(ctx context.Context, ms int) (int, error) {
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return ms, nil
	})

	value, err := future.AwaitWithTimeout(20 * time.Millisecond)
	if !errors.Is(err, async.ErrTimeout) {
		t.Errorf("Expected timeout error, got: %v", err)
	}
	if value != 0 {
		t.Errorf("Expected zero value on timeout, got %d", value)
	}
	if future.IsComplete() {
		t.Error("Expected future to still be running")
	}
}
