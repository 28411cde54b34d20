package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slamweb/slam/internal/domain/model"
)

// JobTable is the in-memory JobStore. It remembers at most maxJobs jobs;
// making room forgets the oldest finished job, and only when every job is
// still in flight the oldest job of all.
type JobTable struct {
	mu      sync.Mutex
	jobs    map[string]*list.Element
	order   *list.List // front = newest
	maxJobs int
	now     func() time.Time
}

// NewJobTable creates an empty job table.
func NewJobTable(opts ...JobOption) *JobTable {
	t := &JobTable{
		jobs:    make(map[string]*list.Element),
		order:   list.New(),
		maxJobs: 1024,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *JobTable) Put(_ context.Context, id string) (model.JobState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.jobs[id]; ok {
		return model.JobState{}, fmt.Errorf("%w: %s", ErrJobExists, id)
	}
	if t.order.Len() >= t.maxJobs {
		t.evict()
	}
	now := t.now()
	st := &model.JobState{ID: id, Status: model.JobPending, CreatedAt: now, UpdatedAt: now}
	t.jobs[id] = t.order.PushFront(st)
	return *st, nil
}

func (t *JobTable) Get(_ context.Context, id string) (model.JobState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.jobs[id]
	if !ok {
		return model.JobState{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *el.Value.(*model.JobState), nil
}

func (t *JobTable) SetRunning(_ context.Context, id string) error {
	return t.transition(id, func(st *model.JobState) {
		st.Status = model.JobRunning
	})
}

func (t *JobTable) SetResult(_ context.Context, id, draftID, requestID string) error {
	return t.transition(id, func(st *model.JobState) {
		st.Status = model.JobDone
		st.DraftID = draftID
		st.RequestID = requestID
	})
}

func (t *JobTable) SetError(_ context.Context, id, requestID, msg string) error {
	return t.transition(id, func(st *model.JobState) {
		st.Status = model.JobFailed
		st.RequestID = requestID
		st.Error = msg
	})
}

func (t *JobTable) Count(_ context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

func (t *JobTable) transition(id string, fn func(*model.JobState)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	st := el.Value.(*model.JobState)
	if st.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrJobFinished, id, st.Status)
	}
	fn(st)
	st.UpdatedAt = t.now()
	return nil
}

// evict drops one job. Caller holds t.mu.
func (t *JobTable) evict() {
	for el := t.order.Back(); el != nil; el = el.Prev() {
		if st := el.Value.(*model.JobState); st.Status.Terminal() {
			t.remove(el)
			return
		}
	}
	if el := t.order.Back(); el != nil {
		t.remove(el)
	}
}

func (t *JobTable) remove(el *list.Element) {
	t.order.Remove(el)
	delete(t.jobs, el.Value.(*model.JobState).ID)
}
