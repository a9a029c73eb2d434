package async

import "errors"

// ErrTimeout is returned when an await exceeds its timeout.
var ErrTimeout = errors.New("async: operation timed out")
