package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-insights-service/internal/domain"
	"social-insights-service/internal/metrics"
)

// ErrUnknownSource is returned by SyncSource for an unregistered source name.
var ErrUnknownSource = errors.New("unknown video source")

// SyncService imports posts from external video sources into the record store.
type SyncService struct {
	repo    domain.PostRepository
	sources []domain.VideoSource
	feed    domain.ChangeFeed
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSyncService creates a new SyncService. feed may be nil when the store
// raises its own change notifications.
func NewSyncService(
	repo domain.PostRepository,
	sources []domain.VideoSource,
	feed domain.ChangeFeed,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		repo:    repo,
		sources: sources,
		feed:    feed,
		metrics: m,
		logger:  logger,
	}
}

// SyncResult holds the result of a sync operation.
type SyncResult struct {
	Source   string
	Count    int
	Duration time.Duration
	Error    error
}

// SyncAll synchronizes every source concurrently. Partial failures are
// allowed; one change event is published if anything was stored.
func (s *SyncService) SyncAll(ctx context.Context) []SyncResult {
	results := make([]SyncResult, len(s.sources))
	var wg sync.WaitGroup

	s.logger.Info("starting sync from all sources",
		zap.Int("source_count", len(s.sources)),
	)

	for i, source := range s.sources {
		wg.Add(1)
		go func(idx int, src domain.VideoSource) {
			defer wg.Done()
			results[idx] = s.syncSource(ctx, src)
		}(i, source)
	}

	wg.Wait()

	totalSynced := 0
	totalErrors := 0
	for _, r := range results {
		if r.Error != nil {
			totalErrors++
		} else {
			totalSynced += r.Count
		}
	}

	s.logger.Info("sync completed",
		zap.Int("total_synced", totalSynced),
		zap.Int("sources_failed", totalErrors),
	)

	if totalSynced > 0 {
		s.publish(ctx, "sync")
	}

	return results
}

// SyncSource synchronizes a single source by name.
func (s *SyncService) SyncSource(ctx context.Context, name string) (*SyncResult, error) {
	for _, src := range s.sources {
		if src.Name() != name {
			continue
		}

		result := s.syncSource(ctx, src)
		if result.Error == nil && result.Count > 0 {
			s.publish(ctx, "sync:"+name)
		}

		return &result, result.Error
	}

	return nil, ErrUnknownSource
}

// SourceNames returns the names of all registered sources.
func (s *SyncService) SourceNames() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}

	return names
}

func (s *SyncService) syncSource(ctx context.Context, src domain.VideoSource) SyncResult {
	start := time.Now()
	result := SyncResult{Source: src.Name()}

	s.logger.Debug("syncing source", zap.String("source", src.Name()))

	posts, err := src.FetchPosts(ctx)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		s.logger.Warn("source fetch failed",
			zap.String("source", src.Name()),
			zap.Error(err),
		)
		return result
	}

	if len(posts) > 0 {
		if err := s.repo.BulkUpsert(ctx, posts); err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			s.logger.Error("bulk upsert failed",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
			return result
		}
	}

	result.Count = len(posts)
	result.Duration = time.Since(start)
	s.metrics.AddSynced(src.Name(), result.Count)

	s.logger.Info("source sync completed",
		zap.String("source", src.Name()),
		zap.Int("count", result.Count),
		zap.Duration("duration", result.Duration),
	)

	return result
}

func (s *SyncService) publish(ctx context.Context, origin string) {
	if s.feed == nil {
		return
	}

	event := domain.ChangeEvent{ID: uuid.NewString(), Source: origin, At: time.Now().UTC()}
	if err := s.feed.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish change event",
			zap.String("origin", origin),
			zap.Error(err),
		)
	}
}
