// Package service is the client core behind the HTTP API: it keeps sport
// drafts, runs image recognition jobs and relays everything else to the
// remote sport backend.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/slamweb/slam/internal/adapters/mq/queue"
	workerpool "github.com/slamweb/slam/internal/adapters/mq/worker"
	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	repository "github.com/slamweb/slam/internal/adapters/repository"
	"github.com/slamweb/slam/internal/domain/dedupe"
	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/sportfield"
	"github.com/slamweb/slam/internal/i18n"
	"github.com/slamweb/slam/pkg/logger"
	"github.com/slamweb/slam/pkg/metrics"
)

const (
	defaultPageSize    = 20
	overviewPageSize   = 20
	recentWeeksOffered = 12
)

// Service implements the API dependencies of the client core.
type Service struct {
	mu sync.RWMutex

	// Core components
	remote   Remote
	drafts   repository.DraftStore
	jobs     repository.JobStore
	deduper  dedupe.Deduper
	queue    eventqueue.Queue
	pool     *workerpool.Pool
	guard    *recognition.Guard
	notifier *sportapi.Notifier

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	draftCapacity int
	maxPageSize   int
	aiTimeout     time.Duration
	defaultLang   i18n.Lang
	location      *time.Location
	now           func() time.Time

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recognition workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recognition queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many in-flight uploads are remembered for deduplication.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDraftCapacity bounds the number of open drafts.
func WithDraftCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.draftCapacity = n
		}
	}
}

// WithMaxPageSize caps the page size of record listings.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithAITimeout bounds each recognition call.
func WithAITimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.aiTimeout = d
		}
	}
}

// WithDefaultLang sets the language used when a caller names none.
func WithDefaultLang(lang i18n.Lang) Option {
	return func(s *Service) {
		if _, ok := i18n.Parse(string(lang)); ok {
			s.defaultLang = lang
		}
	}
}

// WithLocation sets the time zone of form date fields and statistics windows.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier sets where user-facing failure messages are sent.
func WithNotifier(n *sportapi.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a service relaying to remote.
func New(remote Remote, opts ...Option) *Service {
	s := &Service{
		remote:        remote,
		workerCount:   runtime.NumCPU(),
		queueSize:     64,
		dedupeSize:    1024,
		draftCapacity: 256,
		maxPageSize:   100,
		aiTimeout:     300 * time.Second,
		defaultLang:   i18n.Default,
		location:      time.Local,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = sportapi.NewNotifier(0, s.now)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting client core service...")

	s.drafts = repository.NewMemoryStore(ctx,
		repository.WithCapacity(s.draftCapacity),
		repository.WithClock(s.now),
	)
	s.jobs = repository.NewJobTable(
		repository.WithMaxJobs(s.dedupeSize),
		repository.WithJobClock(s.now),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.guard = recognition.NewGuard(s.remote, sportfield.DefaultExtraByType,
		recognition.WithTimeout(s.aiTimeout),
		recognition.WithClock(s.now),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.HandlerFunc(s.handleRecognition))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "client core service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("draftCapacity", s.draftCapacity),
	)
	return nil
}

// Stop drains the recognition queue and releases the stores.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping client core service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "recognition workers did not drain", logger.Error(err))
		}
	}
	if closer, ok := s.drafts.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "client core service stopped")
}

func (s *Service) checkStarted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Lang resolves an optional language name against the service default.
func (s *Service) Lang(name string) i18n.Lang {
	if l, ok := i18n.Parse(name); ok {
		return l
	}
	return s.defaultLang
}

// Notifier returns the notifier user-facing failures are sent to.
func (s *Service) Notifier() *sportapi.Notifier { return s.notifier }

// notify tells the user about a failed backend call.
func (s *Service) notify(lang i18n.Lang, err error) {
	s.notifier.Emit(sportapi.UserMessage(lang, err))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"draftCapacity": s.draftCapacity,
		"suppressed":    s.notifier.Suppressed(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		openDrafts := s.drafts.Count(ctx)

		out["queueLength"] = queueLen
		out["openDrafts"] = openDrafts
		out["jobs"] = s.jobs.Count(ctx)
		out["inFlightUploads"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateDraftsOpen(openDrafts)
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	return out
}
