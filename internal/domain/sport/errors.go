package sport

import "errors"

var (
	// ErrTypeMismatch is returned when an extra payload does not belong to its parent sport type.
	ErrTypeMismatch = errors.New("extra does not match sport type")
	// ErrInvalidRecord is returned for records with impossible values.
	ErrInvalidRecord = errors.New("invalid sport record")
)
