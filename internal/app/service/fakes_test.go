package service

import (
	"context"
	"sync"
	"time"

	"social-insights-service/internal/domain"
)

type fakeSource struct {
	mu    sync.Mutex
	calls int
	list  func(ctx context.Context, call int) ([]domain.Post, error)
}

func (f *fakeSource) ListPosts(ctx context.Context) ([]domain.Post, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	return f.list(ctx, call)
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func staticSource(posts []domain.Post, err error) *fakeSource {
	return &fakeSource{list: func(context.Context, int) ([]domain.Post, error) {
		return posts, err
	}}
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	cleared int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.data[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value

	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)

	return nil
}

func (c *memoryCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.cleared++

	return nil
}

func (c *memoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.data)
}

var (
	day0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	samplePosts = []domain.Post{
		{ID: "3", Title: "Launch reel", Platform: "Instagram", ContentType: "reel", Likes: 400, Comments: 50, Shares: 20, CreatedAt: day0.Add(72 * time.Hour)},
		{ID: "2", Title: "Hiring update", Platform: "LinkedIn", ContentType: "text", Likes: 120, Comments: 30, Shares: 10, CreatedAt: day0.Add(48 * time.Hour)},
		{ID: "1", Title: "", Platform: "Twitter", ContentType: "", Likes: 60, Comments: 5, Shares: 2, CreatedAt: day0},
	}
)
