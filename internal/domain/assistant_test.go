package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePosts(t *testing.T) {
	posts := make([]Post, 8)
	for i := range posts {
		posts[i] = Post{ID: string(rune('a' + i))}
	}

	assert.Len(t, TruncatePosts(posts, MaxAssistantPosts), 5)
	assert.Equal(t, "a", TruncatePosts(posts, MaxAssistantPosts)[0].ID)
	assert.Len(t, TruncatePosts(posts[:3], MaxAssistantPosts), 3)
	assert.Empty(t, TruncatePosts(posts, -1))
}

func TestNewAssistantSummary(t *testing.T) {
	agg := BuildAggregates([]Post{
		{ID: "1", Title: "Reel", Platform: "Instagram", Likes: 300, Comments: 10},
		{ID: "2", Platform: "LinkedIn", Likes: 40, Shares: 2},
	}, DefaultAggregateOptions())

	s := NewAssistantSummary(agg)

	assert.Equal(t, 2, s.TotalPosts)
	assert.Equal(t, int64(340), s.TotalLikes)
	assert.Equal(t, agg.AvgEngagement, s.AvgEngagement)
	assert.Equal(t, []string{"Reel", "Post #2"}, s.TopContent)
	assert.Len(t, s.Platforms, 2)
	assert.Equal(t, agg.Platforms[0].Key, s.Platforms[0].Platform)
}
