package locker

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is an in-process DistributedLocker for single-instance runs,
// such as the command line sync.
type LocalLocker struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{until: make(map[string]time.Time), now: time.Now}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if exp, ok := l.until[key]; ok && now.Before(exp) {
		return false, nil
	}
	l.until[key] = now.Add(ttl)

	return true, nil
}

func (l *LocalLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.until, key)

	return nil
}
