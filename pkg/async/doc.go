// Package async provides small generic helpers for running blocking
// computations in their own goroutine and collecting the results later.
//
// The central type is Future, the eventual result of a computation started
// with Run. Validators in this module are plain blocking functions; the form
// orchestrator and the All/Any combinators wrap them in futures so that
// several validations can be in flight at once while the caller keeps going.
//
// # Usage
//
//	f := async.Run(ctx, func(ctx context.Context) (string, error) {
//	    return lookupUsername(ctx, name)
//	})
//
//	// do other work …
//	res, err := f.Await()
//
// WaitAll waits for every future and reports the first error in input
// order, which keeps combined validation messages deterministic. WaitAny
// returns whichever future completes first.
//
// # Error Handling
//
// A panic inside the computation is recovered and reported as an error
// wrapping ErrPanic, so one misbehaving validator cannot take the process
// down. If the context is already cancelled when Run is called, the
// computation is skipped and the future completes with the context error.
package async
