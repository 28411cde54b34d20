package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("draft not found")
	ErrJobNotFound  = errors.New("recognition job not found")
	ErrCapacity     = errors.New("draft store is full")
	ErrInvalidDraft = errors.New("draft has no sport record")
	ErrJobExists    = errors.New("recognition job already exists")
	ErrJobFinished  = errors.New("recognition job already finished")
)
