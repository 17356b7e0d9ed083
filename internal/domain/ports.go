package domain

import (
	"context"
	"time"
)

// ChangeEvent signals that the post table changed. Consumers only re-run the
// fetch and compute pipeline; the payload is informational.
type ChangeEvent struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// PostSource supplies the full post collection.
type PostSource interface {
	// ListPosts returns every post, newest first. An empty slice with a nil
	// error means there are no records; an error means the fetch failed.
	ListPosts(ctx context.Context) ([]Post, error)
}

// PostRepository persists posts.
// Implementations: internal/infra/postgres/post_repository.go
type PostRepository interface {
	PostSource

	// BulkUpsert creates or updates posts keyed by ID.
	BulkUpsert(ctx context.Context, posts []Post) error

	// Count returns the number of stored posts.
	Count(ctx context.Context) (int64, error)
}

// VideoSource imports posts from an external platform.
// Implementations: internal/infra/provider/youtube/
type VideoSource interface {
	Name() string
	FetchPosts(ctx context.Context) ([]Post, error)
}

// ChangeFeed publishes and delivers change notifications.
// Implementations: internal/infra/postgres/notifier.go, internal/infra/nats/
type ChangeFeed interface {
	Publish(ctx context.Context, event ChangeEvent) error

	// Subscribe delivers events until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// Assistant answers free-text questions about the supplied analytics.
// Implementations: internal/infra/provider/chat/
type Assistant interface {
	Ask(ctx context.Context, req AssistantRequest) (string, error)
}

// UserRepository stores dashboard accounts.
// Implementations: internal/infra/postgres/user_repository.go
type UserRepository interface {
	Create(ctx context.Context, user *User) error

	// GetByEmail returns nil, nil when no user has the address.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
