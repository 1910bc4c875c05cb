package async

import "errors"

// Errors returned by futures. Computation errors are passed through as is.
var (
	ErrTimeout   = errors.New("async: future did not complete in time")
	ErrNoFutures = errors.New("async: no futures to wait for")
	ErrPanic     = errors.New("async: computation panicked")
)
