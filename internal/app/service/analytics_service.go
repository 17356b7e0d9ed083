// Package service provides application use cases.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.uber.org/zap"

	"social-insights-service/internal/domain"
	"social-insights-service/internal/metrics"
)

// SnapshotStatus tells whether the record source could be read.
type SnapshotStatus string

const (
	StatusConnected    SnapshotStatus = "connected"
	StatusDisconnected SnapshotStatus = "disconnected"
)

// Snapshot is one full computation of the dashboard data.
type Snapshot struct {
	Status     SnapshotStatus      `json:"status"`
	Error      string              `json:"error,omitempty"`
	Filter     string              `json:"filter"`
	Aggregates domain.Aggregates   `json:"aggregates"`
	Insights   []domain.Insight    `json:"insights"`
	Forecast   domain.Forecast     `json:"forecast"`
	Posts      []domain.ScoredPost `json:"posts"`
	ComputedAt time.Time           `json:"computed_at"`

	Err error `json:"-"`
}

// Connected reports whether the snapshot was computed from source data.
func (s *Snapshot) Connected() bool {
	return s.Status == StatusConnected
}

// RecentPosts returns up to limit posts in source order (newest first).
func (s *Snapshot) RecentPosts(limit int) []domain.Post {
	scored := s.Posts
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]domain.Post, len(scored))
	for i, sp := range scored {
		out[i] = sp.Post
	}

	return out
}

// AnalyticsConfig holds analytics pipeline settings.
type AnalyticsConfig struct {
	Options       domain.AggregateOptions
	FetchTimeout  time.Duration
	Retries       int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	CacheTTL      time.Duration
}

// AnalyticsService fetches posts and computes snapshots over them.
type AnalyticsService struct {
	source   domain.PostSource
	cache    domain.Cache
	executor failsafe.Executor[[]domain.Post]
	cfg      AnalyticsConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time

	generation atomic.Uint64
	tickets    atomic.Uint64

	mu           sync.RWMutex
	latest       *Snapshot
	latestTicket uint64
}

// NewAnalyticsService creates an AnalyticsService. cache and m may be nil.
func NewAnalyticsService(
	source domain.PostSource,
	cache domain.Cache,
	cfg AnalyticsConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AnalyticsService {
	if cfg.Options.Location == nil {
		cfg.Options.Location = time.UTC
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = cfg.RetryDelay
	}

	retry := retrypolicy.NewBuilder[[]domain.Post]().
		WithBackoff(cfg.RetryDelay, cfg.MaxRetryDelay).
		WithMaxRetries(cfg.Retries).
		HandleIf(func(_ []domain.Post, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}).
		Build()

	return &AnalyticsService{
		source:   source,
		cache:    cache,
		executor: failsafe.With(retry),
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Snapshot returns the analytics for the filter. A failed fetch yields a
// disconnected, empty snapshot rather than an error; the error is only
// non-nil when ctx itself is done.
//
// Filtered snapshots are derived from the unfiltered posts, so they share
// its cache entry and its connection status.
func (s *AnalyticsService) Snapshot(ctx context.Context, filter domain.PostFilter) (*Snapshot, error) {
	base, err := s.unfiltered(ctx)
	if err != nil {
		return nil, err
	}
	if filter.IsZero() || !base.Connected() {
		return base, nil
	}

	if filter.Now.IsZero() {
		filter.Now = s.now()
	}
	posts := filter.Apply(base.RecentPosts(-1))

	snap := s.compute(posts)
	snap.Filter = filter.Key()

	return snap, nil
}

// Refresh recomputes the unfiltered snapshot from the source, bypassing the cache.
func (s *AnalyticsService) Refresh(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := s.load(ctx)
	s.store(ctx, snap)

	return snap, nil
}

// Invalidate drops every cached snapshot. Bumping the generation makes stale
// entries unreachable even if clearing the cache fails.
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear snapshot cache", zap.Error(err))
	}
}

// Latest returns the most recently published snapshot, or nil before the first load.
func (s *AnalyticsService) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest
}

func (s *AnalyticsService) unfiltered(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if snap := s.cached(ctx); snap != nil {
		return snap, nil
	}

	snap := s.load(ctx)
	s.store(ctx, snap)

	return snap, nil
}

// load fetches and computes under a ticket. When a newer load has already
// been published, the newer snapshot wins and is returned instead.
func (s *AnalyticsService) load(ctx context.Context) *Snapshot {
	ticket := s.tickets.Add(1)
	start := time.Now()

	posts, err := s.fetch(ctx)

	var snap *Snapshot
	if err != nil {
		s.metrics.IncSourceFailure()
		s.logger.Error("record source unavailable", zap.Error(err))
		snap = s.disconnected(err)
	} else {
		snap = s.compute(posts)
	}
	snap.Filter = domain.PostFilter{}.Key()

	s.metrics.ObserveSnapshot(string(snap.Status), time.Since(start))
	s.logger.Debug("snapshot computed",
		zap.Uint64("ticket", ticket),
		zap.String("status", string(snap.Status)),
		zap.Int("posts", snap.Aggregates.TotalPosts),
	)

	return s.publish(ticket, snap)
}

func (s *AnalyticsService) publish(ticket uint64, snap *Snapshot) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket < s.latestTicket {
		s.logger.Debug("discarding stale snapshot",
			zap.Uint64("ticket", ticket),
			zap.Uint64("latest_ticket", s.latestTicket),
		)

		return s.latest
	}
	s.latest = snap
	s.latestTicket = ticket

	return snap
}

func (s *AnalyticsService) fetch(ctx context.Context) ([]domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	posts, err := s.executor.WithContext(ctx).Get(func() ([]domain.Post, error) {
		return s.source.ListPosts(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return posts, nil
}

func (s *AnalyticsService) compute(posts []domain.Post) *Snapshot {
	agg := domain.BuildAggregates(posts, s.cfg.Options)
	insights := domain.GenerateInsights(agg)
	if insights == nil {
		insights = []domain.Insight{}
	}

	return &Snapshot{
		Status:     StatusConnected,
		Aggregates: agg,
		Insights:   insights,
		Forecast:   domain.BuildForecast(posts),
		Posts:      agg.Scored,
		ComputedAt: s.now(),
	}
}

func (s *AnalyticsService) disconnected(err error) *Snapshot {
	agg := domain.BuildAggregates(nil, s.cfg.Options)

	return &Snapshot{
		Status:     StatusDisconnected,
		Error:      domain.ErrSourceUnavailable.Error(),
		Aggregates: agg,
		Insights:   []domain.Insight{},
		Forecast:   domain.BuildForecast(nil),
		Posts:      []domain.ScoredPost{},
		ComputedAt: s.now(),
		Err:        err,
	}
}

func (s *AnalyticsService) cacheKey() string {
	return "snapshot:" + strconv.FormatUint(s.generation.Load(), 10) + ":" + domain.PostFilter{}.Key()
}

func (s *AnalyticsService) cached(ctx context.Context) *Snapshot {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		s.logger.Warn("snapshot cache read failed", zap.Error(err))
		return nil
	}
	s.metrics.ObserveCache(data != nil)
	if data == nil {
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("dropping undecodable cached snapshot", zap.Error(err))
		return nil
	}
	snap.Aggregates.Scored = snap.Posts

	return &snap
}

// store caches connected snapshots only; a disconnected source is retried
// on the next request.
func (s *AnalyticsService) store(ctx context.Context, snap *Snapshot) {
	if s.cache == nil || !snap.Connected() {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("failed to encode snapshot", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
}
