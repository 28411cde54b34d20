package service

import (
	"errors"

	"github.com/slamweb/slam/internal/i18n"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrValidation   = errors.New("invalid input")
	ErrUnknownField = errors.New("unknown field")
	ErrTrackIndex   = errors.New("track index out of range")
	ErrBackpressure = errors.New("recognition queue is full")
)

// InputError is a validation failure the user can fix. Key names its
// localized message.
type InputError struct {
	Key    string
	Detail string
}

func (e *InputError) Error() string {
	if e.Detail != "" {
		return e.Key + ": " + e.Detail
	}
	return e.Key
}

// Is makes every InputError match ErrValidation.
func (e *InputError) Is(target error) bool { return target == ErrValidation }

// Message returns the localized text of the error.
func (e *InputError) Message(lang i18n.Lang) string { return i18n.Label(lang, e.Key) }

var (
	errRegisterFill     = &InputError{Key: "register.errorFill"}
	errRegisterLength   = &InputError{Key: "register.errorLength"}
	errRegisterMismatch = &InputError{Key: "register.errorMismatch"}
)
