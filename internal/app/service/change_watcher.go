package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"social-insights-service/internal/domain"
	"social-insights-service/internal/metrics"
)

// Refresher recomputes snapshots after the underlying data changed.
type Refresher interface {
	Invalidate(ctx context.Context)
	Refresh(ctx context.Context) (*Snapshot, error)
}

// ChangeWatcher turns change notifications into snapshot refreshes and
// signals listeners (the SSE stream) once the new snapshot is ready.
type ChangeWatcher struct {
	feed      domain.ChangeFeed
	refresher Refresher
	debounce  time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger

	mu        sync.Mutex
	listeners map[uint64]chan struct{}
	nextID    uint64
}

// NewChangeWatcher creates a ChangeWatcher. Notifications arriving within
// debounce of the first one are folded into a single refresh.
func NewChangeWatcher(
	feed domain.ChangeFeed,
	refresher Refresher,
	debounce time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ChangeWatcher {
	return &ChangeWatcher{
		feed:      feed,
		refresher: refresher,
		debounce:  debounce,
		metrics:   m,
		logger:    logger,
		listeners: make(map[uint64]chan struct{}),
	}
}

// Run consumes the change feed until ctx is cancelled or the feed closes.
func (w *ChangeWatcher) Run(ctx context.Context) error {
	events, err := w.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to change feed: %w", err)
	}

	w.logger.Info("change watcher started", zap.Duration("debounce", w.debounce))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("change watcher stopped")
			return nil

		case event, ok := <-events:
			if !ok {
				w.logger.Warn("change feed closed")
				return nil
			}
			w.metrics.IncChangeEvent()
			w.logger.Debug("change received",
				zap.String("id", event.ID),
				zap.String("source", event.Source),
			)

			if w.debounce <= 0 {
				w.refresh(ctx)
				continue
			}
			if fire == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}

		case <-fire:
			fire = nil
			w.refresh(ctx)
		}
	}
}

// Listen registers for refresh signals. Signals are coalesced: a slow
// listener sees at most one pending signal. The returned func unregisters.
func (w *ChangeWatcher) Listen() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = ch
	w.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners, id)
			w.mu.Unlock()
			close(ch)
		})
	}
}

func (w *ChangeWatcher) refresh(ctx context.Context) {
	w.refresher.Invalidate(ctx)

	snap, err := w.refresher.Refresh(ctx)
	if err != nil {
		return
	}
	w.logger.Info("snapshot refreshed after change",
		zap.String("status", string(snap.Status)),
		zap.Int("posts", snap.Aggregates.TotalPosts),
	)

	w.broadcast()
}

func (w *ChangeWatcher) broadcast() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ch := range w.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
