package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker implements DistributedLocker with redsync (Redlock).
type RedisLocker struct {
	rs     *redsync.Redsync
	prefix string
	logger *zap.Logger

	mu      sync.Mutex
	mutexes map[string]*redsync.Mutex
}

// NewRedisLocker creates a RedisLocker. Every key is prefixed with prefix so
// that several services can share one Redis.
func NewRedisLocker(client *redis.Client, prefix string, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		rs:      redsync.New(goredis.NewPool(client)),
		prefix:  prefix,
		logger:  logger,
		mutexes: make(map[string]*redsync.Mutex),
	}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	name := r.prefix + key
	mutex := r.rs.NewMutex(name, redsync.WithExpiry(ttl), redsync.WithTries(1))

	if err := mutex.LockContext(ctx); err != nil {
		if isTaken(err) {
			r.logger.Debug("lock held elsewhere", zap.String("key", name))
			return false, nil
		}
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired", zap.String("key", name), zap.Duration("ttl", ttl))

	return true, nil
}

func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, ok := r.mutexes[key]
	delete(r.mutexes, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	released, err := mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", r.prefix+key, err)
	}
	r.logger.Debug("lock released",
		zap.String("key", r.prefix+key),
		zap.Bool("owned", released),
	)

	return nil
}

// isTaken reports lock contention. redsync reports it either as ErrFailed or
// as a "lock already taken" error listing the holding nodes.
func isTaken(err error) bool {
	var taken *redsync.ErrTaken

	return errors.Is(err, redsync.ErrFailed) ||
		errors.As(err, &taken) ||
		strings.Contains(err.Error(), "lock already taken")
}
