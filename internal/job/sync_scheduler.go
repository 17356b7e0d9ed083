// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"social-insights-service/internal/app/service"
	"social-insights-service/pkg/locker"
)

// LockKey is the distributed lock guarding the periodic sync.
const LockKey = "sync:scheduler:lock"

// Syncer imports posts from every configured source.
type Syncer interface {
	SyncAll(ctx context.Context) []service.SyncResult
}

// SyncConfig holds sync scheduler configuration.
type SyncConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// SyncScheduler runs the video source import on an interval. Only one
// instance runs a given round: the lock is held for the whole interval after
// a clean run and released straight away after a failed one.
type SyncScheduler struct {
	syncer Syncer
	cfg    SyncConfig
	locker locker.DistributedLocker
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncScheduler creates a new SyncScheduler.
func NewSyncScheduler(syncer Syncer, cfg SyncConfig, l locker.DistributedLocker, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{
		syncer: syncer,
		cfg:    cfg,
		locker: l,
		logger: logger,
	}
}

// Start begins the background loop.
func (s *SyncScheduler) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting sync scheduler",
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("run_on_startup", s.cfg.OnStartup),
	)

	s.wg.Add(1)
	go s.run()
}

// Stop cancels the loop and waits for a running round to finish.
func (s *SyncScheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.logger.Info("stopping sync scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("sync scheduler stopped")
}

func (s *SyncScheduler) run() {
	defer s.wg.Done()

	if s.cfg.OnStartup {
		s.RunOnce(s.ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce performs one locked sync round and reports whether it ran.
func (s *SyncScheduler) RunOnce(ctx context.Context) bool {
	acquired, err := s.locker.Acquire(ctx, LockKey, s.cfg.Interval)
	if err != nil {
		s.logger.Error("failed to acquire sync lock", zap.Error(err))
		return false
	}
	if !acquired {
		s.logger.Debug("sync already running elsewhere, skipping")
		return false
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	results := s.syncer.SyncAll(runCtx)

	synced, failed := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			continue
		}
		synced += r.Count
	}

	if failed > 0 {
		if err := s.locker.Release(ctx, LockKey); err != nil {
			s.logger.Error("failed to release sync lock", zap.Error(err))
		}
		s.logger.Warn("sync round had failures, lock released",
			zap.Int("synced", synced),
			zap.Int("sources_failed", failed),
		)
		return true
	}

	s.logger.Info("sync round completed, holding lock for cooldown",
		zap.Int("synced", synced),
		zap.Duration("cooldown", s.cfg.Interval),
	)

	return true
}
