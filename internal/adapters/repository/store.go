// Package repository keeps the process's in-memory state: drafts being
// edited and recognition jobs being processed.
package repository

import (
	"context"

	"github.com/slamweb/slam/internal/domain/model"
)

// DraftStore provides read/write access to drafts. Returned drafts are
// copies; changes go through Update.
type DraftStore interface {
	// Create stores d under a fresh id and returns the stored copy.
	// Returns ErrCapacity when the store is full.
	Create(ctx context.Context, d *model.Draft) (*model.Draft, error)

	// Get returns the draft with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Draft, error)

	// Update applies fn to a copy of the draft and stores it when fn
	// succeeds. An error from fn leaves the stored draft untouched.
	Update(ctx context.Context, id string, fn func(*model.Draft) error) (*model.Draft, error)

	// Delete removes the draft with id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns all drafts, most recently updated first.
	List(ctx context.Context) []*model.Draft

	// Count returns the number of drafts held.
	Count(ctx context.Context) int
}

// JobStore tracks recognition jobs from submission to result.
type JobStore interface {
	// Put records a new job in pending state.
	Put(ctx context.Context, id string) (model.JobState, error)

	// Get returns the job with id, or ErrJobNotFound.
	Get(ctx context.Context, id string) (model.JobState, error)

	// SetRunning marks the job as picked up by a worker.
	SetRunning(ctx context.Context, id string) error

	// SetResult marks the job done with the draft it produced.
	SetResult(ctx context.Context, id, draftID, requestID string) error

	// SetError marks the job failed.
	SetError(ctx context.Context, id, requestID, msg string) error

	// Count returns the number of jobs held.
	Count(ctx context.Context) int
}

var (
	_ DraftStore = (*MemoryStore)(nil)
	_ JobStore   = (*JobTable)(nil)
)
