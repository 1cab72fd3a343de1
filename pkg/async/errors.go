package async

import "errors"

// ErrTimeout is returned by AwaitWithTimeout when the future is still
// pending at the deadline. The underlying function keeps running.
var ErrTimeout = errors.New("async: operation timed out waiting for future completion")
