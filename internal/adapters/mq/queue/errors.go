package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("recognition queue is full")
	ErrClosed = errors.New("recognition queue is closed")
)
