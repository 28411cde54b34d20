package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slamweb/slam/internal/domain/model"
	"github.com/slamweb/slam/pkg/metrics"
)

// MemoryStore is the in-memory DraftStore. Drafts are stored and handed out
// as deep copies so no caller shares a record with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]*model.Draft

	capacity              int
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a draft store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		drafts:                make(map[string]*model.Draft),
		capacity:              256,
		metricsUpdateInterval: metrics.RefreshInterval(),
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) Create(_ context.Context, d *model.Draft) (*model.Draft, error) {
	if d == nil || d.Sport == nil {
		return nil, ErrInvalidDraft
	}
	stored := d.Clone()
	stored.ID = uuid.NewString()
	now := s.now()
	stored.CreatedAt, stored.UpdatedAt = now, now

	s.mu.Lock()
	if s.capacity > 0 && len(s.drafts) >= s.capacity {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d drafts", ErrCapacity, s.capacity)
	}
	s.drafts[stored.ID] = stored
	n := len(s.drafts)
	s.mu.Unlock()

	metrics.UpdateDraftsOpen(n)
	metrics.RecordDraftCreated(string(stored.Origin))
	return stored.Clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*model.Draft) error) (*model.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	work := d.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	if work.Sport == nil {
		return nil, ErrInvalidDraft
	}
	work.ID, work.CreatedAt = d.ID, d.CreatedAt
	work.UpdatedAt = s.now()
	s.drafts[id] = work
	return work.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.drafts[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.drafts, id)
	n := len(s.drafts)
	s.mu.Unlock()

	metrics.UpdateDraftsOpen(n)
	return nil
}

func (s *MemoryStore) List(_ context.Context) []*model.Draft {
	s.mu.RLock()
	out := make([]*model.Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		out = append(out, d.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// startMetricsUpdater periodically republishes the open drafts gauge.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateDraftsOpen(s.Count(ctx))
			}
		}
	}()
}
