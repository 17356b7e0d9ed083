package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-insights-service/internal/domain"
)

func TestPostModel_RoundTripsNulls(t *testing.T) {
	m := PostFromDomain(domain.Post{ID: "7", Likes: 4})

	assert.Nil(t, m.Title)
	assert.Nil(t, m.Platform)
	assert.Nil(t, m.CreatedAt)
	require.NotNil(t, m.Likes)
	assert.Equal(t, int64(4), *m.Likes)

	p := (&PostModel{ID: "7"}).ToDomain()
	assert.Equal(t, domain.DefaultPlatform, p.Platform)
	assert.Equal(t, domain.DefaultContentType, p.ContentType)
	assert.Zero(t, p.Likes)
	assert.False(t, p.HasValidDate())
}

func TestPostRepository_ListPosts_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb, cleanup := setupTestDB(t)
	defer cleanup()

	posts, err := NewPostRepository(tdb.db).ListPosts(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_BulkUpsertAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPostRepository(tdb.db)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err := repo.BulkUpsert(ctx, []domain.Post{
		{ID: "old", Title: "Old", Platform: "LinkedIn", ContentType: "carousel", Likes: 10, CreatedAt: base},
		{ID: "new", Title: "New", Platform: "Instagram", Likes: 20, Comments: 2, CreatedAt: base.Add(time.Hour)},
		{ID: "undated", Likes: 1},
	})
	require.NoError(t, err)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, []string{"new", "old", "undated"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, "carousel", posts[1].ContentType)
	assert.True(t, posts[0].CreatedAt.Equal(base.Add(time.Hour)))
	assert.Equal(t, domain.DefaultPlatform, posts[2].Platform, "null platform is normalized on read")
	assert.Equal(t, domain.DefaultContentType, posts[0].ContentType)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestPostRepository_BulkUpsert_UpdatesExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPostRepository(tdb.db)
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []domain.Post{{ID: "1", Title: "Draft", Likes: 5}}))
	require.NoError(t, repo.BulkUpsert(ctx, []domain.Post{{ID: "1", Title: "Final", Likes: 50, Shares: 3}}))

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Final", posts[0].Title)
	assert.Equal(t, int64(50), posts[0].Likes)
	assert.Equal(t, int64(3), posts[0].Shares)
}

func TestPostRepository_BulkUpsert_ManyBatches(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPostRepository(tdb.db)
	ctx := context.Background()

	posts := make([]domain.Post, 250)
	for i := range posts {
		posts[i] = domain.Post{ID: fmt.Sprintf("p-%03d", i), Platform: "Facebook", Likes: int64(i)}
	}
	require.NoError(t, repo.BulkUpsert(ctx, posts))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250), count)
}

func TestPostRepository_ListPosts_ContextCancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPostRepository(tdb.db).ListPosts(ctx)
	assert.Error(t, err)
}
