package sportfield

import "errors"

// ErrInvalidField reports a field config that breaks the Select invariant.
var ErrInvalidField = errors.New("invalid field config")
