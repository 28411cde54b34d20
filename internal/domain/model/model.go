// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/sport"
)

// Origin records where a draft came from.
type Origin string

const (
	OriginBlank       Origin = "blank"
	OriginRecognition Origin = "recognition"
	OriginRecord      Origin = "record"
)

// Draft is an in-memory sport record being edited before submit. A draft
// with Sport.ID == 0 becomes an insert, otherwise an update.
type Draft struct {
	ID        string
	Origin    Origin
	Sport     *sport.Sport
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so callers never share the stored record.
func (d *Draft) Clone() *Draft {
	c := *d
	if d.Sport != nil {
		c.Sport = d.Sport.Clone()
	}
	return &c
}

// JobStatus is the lifecycle state of a recognition job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether the job will not change any more.
func (s JobStatus) Terminal() bool { return s == JobDone || s == JobFailed }

// RecognitionJob is a queued request to recognize a set of images.
type RecognitionJob struct {
	ID          string
	Fingerprint string
	Images      []recognition.Image
	Lang        string
	SubmittedAt time.Time
}

// JobState is the pollable view of a recognition job.
type JobState struct {
	ID        string
	Status    JobStatus
	DraftID   string
	RequestID string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
