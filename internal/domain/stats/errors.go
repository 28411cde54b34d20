package stats

import "errors"

// ErrInvalidQuery is returned for statistics windows the backend cannot answer.
var ErrInvalidQuery = errors.New("invalid stats query")
