// Package async provides utilities for asynchronous programming with Go generics.
//
// This package implements a Future pattern for non-blocking operations with timeout support
// and coordination utilities for managing multiple asynchronous computations.
//
// # Core Types
//
// Future[U] represents the result of an asynchronous computation. ExecFuture is the
// error-only variant used for operations that produce no value, such as binding or
// draining a listener.
//
// # Usage
//
// Reading two files concurrently:
//
//	keyF := async.Async(ctx, keyPath, readFile)
//	chainF := async.Async(ctx, chainPath, readFile)
//
//	key, keyErr := keyF.Await()
//	chain, chainErr := chainF.Await()
//
// Running two operations and waiting for both, even when one fails:
//
//	err := async.ExecAll(
//		async.Exec(ctx, httpSrv, start),
//		async.Exec(ctx, httpsSrv, start),
//	)
//
// # Error Handling
//
//   - ErrTimeout: returned when AwaitWithTimeout exceeds its duration
//
// ExecAll joins every non-nil error with errors.Join, so callers can match any of the
// underlying sentinels with errors.Is.
//
// # Context Support
//
// If a context is cancelled before the async function begins execution, the future
// completes immediately with the context's error.
package async
