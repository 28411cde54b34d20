package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity bounds the number of drafts. capacity <= 0 disables the bound.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		s.capacity = capacity
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithClock replaces time.Now for draft timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// JobOption applies a configuration option to the JobTable.
type JobOption func(*JobTable)

// WithMaxJobs bounds how many jobs are remembered. When full, the oldest
// finished job is forgotten first.
func WithMaxJobs(n int) JobOption {
	return func(t *JobTable) {
		if n > 0 {
			t.maxJobs = n
		}
	}
}

// WithJobClock replaces time.Now for job timestamps.
func WithJobClock(now func() time.Time) JobOption {
	return func(t *JobTable) {
		if now != nil {
			t.now = now
		}
	}
}
