package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"social-insights-service/internal/domain"
)

const upsertBatchSize = 100

// PostRepository implements domain.PostRepository using PostgreSQL.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostgreSQL post repository.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// ListPosts returns every post, newest first. Rows without a timestamp sort last.
func (r *PostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var models []PostModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC NULLS LAST").
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	posts := make([]domain.Post, len(models))
	for i := range models {
		posts[i] = models[i].ToDomain()
	}

	return posts, nil
}

// BulkUpsert creates or updates posts keyed by id.
func (r *PostRepository) BulkUpsert(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]*PostModel, len(posts))
	for i, p := range posts {
		models[i] = PostFromDomain(p)
		models[i].UpdatedAt = now
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "platform", "content_type",
			"likes", "comments", "shares",
			"created_at", "updated_at",
		}),
	}).CreateInBatches(models, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("bulk upserting posts: %w", err)
	}

	return nil
}

// Count returns the number of stored posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&PostModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}

	return count, nil
}
