package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietAggregates returns aggregates on which no rule fires.
func quietAggregates() Aggregates {
	return Aggregates{
		TotalPosts:         4,
		Trend:              TrendStable,
		HighPerformerRatio: 0.5,
	}
}

func TestGenerateInsights_Empty(t *testing.T) {
	insights := GenerateInsights(BuildAggregates(nil, DefaultAggregateOptions()))

	assert.Empty(t, insights)
	assert.NotNil(t, insights)
}

func TestGenerateInsights_PlatformDominance(t *testing.T) {
	agg := quietAggregates()
	agg.Platforms = []GroupStat{
		{Key: "A", Posts: 2, AvgEngagement: 200},
		{Key: "B", Posts: 2, AvgEngagement: 90},
	}

	insights := GenerateInsights(agg)

	require.Len(t, insights, 1)
	in := insights[0]
	assert.Equal(t, 1, in.ID)
	assert.Equal(t, "A Outperforming Other Platforms", in.Title)
	assert.Equal(t, "A", in.Platform)
	assert.Equal(t, CategoryPerformance, in.Category)
	assert.Equal(t, ImpactHigh, in.Impact)
	assert.Equal(t, PlatformDominanceConfidence, in.Confidence)
	assert.Equal(t, "A has 200 average engagement, which is 122% higher than B. Focus your efforts here.", in.Description)
	assert.Equal(t, []string{
		"A: 200 avg engagement",
		"B: 90 avg engagement",
		"2 posts on A",
	}, in.DataPoints)
}

func TestGenerateInsights_PlatformDominance_NotFired(t *testing.T) {
	tests := []struct {
		name      string
		platforms []GroupStat
	}{
		{"single platform", []GroupStat{{Key: "A", Posts: 2, AvgEngagement: 80}}},
		{"within fifty percent", []GroupStat{{Key: "A", AvgEngagement: 100}, {Key: "B", AvgEngagement: 70}}},
		{"exactly fifty percent", []GroupStat{{Key: "A", AvgEngagement: 60}, {Key: "B", AvgEngagement: 40}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := quietAggregates()
			agg.Platforms = tt.platforms

			assert.Empty(t, GenerateInsights(agg))
		})
	}
}

func TestGenerateInsights_PlatformDominance_ZeroWorst(t *testing.T) {
	agg := quietAggregates()
	agg.Platforms = []GroupStat{{Key: "A", AvgEngagement: 12}, {Key: "B", AvgEngagement: 0}}

	insights := GenerateInsights(agg)

	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Description, "well ahead of B")
}

func TestGenerateInsights_Trend(t *testing.T) {
	tests := []struct {
		trend  Trend
		title  string
		impact Impact
	}{
		{TrendIncreasing, "Engagement Trend: Improving", ImpactMedium},
		{TrendDecreasing, "Engagement Trend: Declining", ImpactHigh},
	}

	for _, tt := range tests {
		t.Run(string(tt.trend), func(t *testing.T) {
			agg := quietAggregates()
			agg.Trend = tt.trend
			agg.AvgWeighted = 120.4

			insights := GenerateInsights(agg)

			require.Len(t, insights, 1)
			assert.Equal(t, tt.title, insights[0].Title)
			assert.Equal(t, tt.impact, insights[0].Impact)
			assert.Equal(t, TrendConfidence, insights[0].Confidence)
			assert.Contains(t, insights[0].DataPoints, "Average engagement: 120")
		})
	}
}

func TestGenerateInsights_ConversationRatio(t *testing.T) {
	agg := quietAggregates()
	agg.AvgLikes = 100
	agg.AvgComments = 5

	insights := GenerateInsights(agg)

	require.Len(t, insights, 1)
	assert.Equal(t, CategoryStrategy, insights[0].Category)
	assert.Equal(t, "Comment-to-like ratio: 5.0%", insights[0].DataPoints[2])

	agg.AvgLikes = 0
	assert.Empty(t, GenerateInsights(agg), "no likes means no ratio")
}

func TestGenerateInsights_HighPerformerShare(t *testing.T) {
	agg := quietAggregates()
	agg.HighPerformers = 1
	agg.HighPerformerRatio = 0.25

	insights := GenerateInsights(agg)

	require.Len(t, insights, 1)
	assert.Equal(t, CategoryOptimization, insights[0].Category)
	assert.Equal(t, "High-performing posts: 1/4", insights[0].DataPoints[0])
	assert.Equal(t, "Current: 25%", insights[0].DataPoints[2])
}

func TestGenerateInsights_AllRulesInOrder(t *testing.T) {
	agg := Aggregates{
		TotalPosts:         13,
		AvgLikes:           100,
		AvgComments:        5,
		AvgWeighted:        120,
		AvgEngagement:      50,
		HighPerformers:     1,
		HighPerformerRatio: 1.0 / 13,
		Trend:              TrendDecreasing,
		Platforms: []GroupStat{
			{Key: "A", Posts: 4, AvgEngagement: 80},
			{Key: "B", Posts: 3, AvgEngagement: 50},
			{Key: "C", Posts: 3, AvgEngagement: 30},
			{Key: "D", Posts: 3, AvgEngagement: 20},
		},
		Hours:     []HourStat{{Hour: 18, Posts: 2, AvgEngagement: 70}, {Hour: 9, Posts: 3, AvgEngagement: 40}},
		PeakHours: []int{18, 9},
		TopPosts: []ScoredPost{{
			Post:     Post{ID: "1", Title: "A launch day recap that runs well past forty characters", Platform: "A", Likes: 900, Comments: 20, Shares: 10},
			Weighted: 970,
		}},
	}

	insights := GenerateInsights(agg)

	require.Len(t, insights, 9)
	categories := make([]InsightCategory, len(insights))
	for i, in := range insights {
		categories[i] = in.Category
		assert.Equal(t, i+1, in.ID)
		assert.GreaterOrEqual(t, in.Confidence, 0.0)
		assert.LessOrEqual(t, in.Confidence, 1.0)
	}
	assert.Equal(t, []InsightCategory{
		CategoryPerformance,
		CategoryTiming,
		CategoryPerformance,
		CategoryContent,
		CategoryOptimization,
		CategoryStrategy,
		CategoryRecommendation,
		CategoryRecommendation,
		CategoryRecommendation,
	}, categories)

	timing := insights[1]
	assert.Equal(t, []string{"18:00 - 19:00: 70 avg engagement", "9:00 - 10:00: 40 avg engagement"}, timing.DataPoints)

	top := insights[3]
	assert.Equal(t, "A", top.Platform)
	assert.Contains(t, top.Description, `"A launch day recap that runs well past f..."`)
	assert.Contains(t, top.DataPoints, "Total engagement score: 970")

	assert.Contains(t, insights[6].Description, "This is above your average!")
	assert.Contains(t, insights[7].Description, "Consider optimizing content for this platform.")
	assert.Equal(t, "Rank: #3 among 4 platforms", insights[8].DataPoints[2])
}

func TestGenerateInsights_BreakdownSkipsSmallPlatforms(t *testing.T) {
	agg := quietAggregates()
	agg.Platforms = []GroupStat{
		{Key: "A", Posts: 3, AvgEngagement: 40},
		{Key: "B", Posts: 2, AvgEngagement: 35},
		{Key: "C", Posts: 5, AvgEngagement: 30},
		{Key: "D", Posts: 9, AvgEngagement: 28},
	}

	insights := GenerateInsights(agg)

	require.Len(t, insights, 2)
	assert.Equal(t, "A", insights[0].Platform)
	assert.Equal(t, "C", insights[1].Platform)
}

func TestGenerateInsights_FromBuiltAggregates(t *testing.T) {
	var posts []Post
	for i := 0; i < 30; i++ {
		platform := []string{"Instagram", "LinkedIn", "Twitter", "Facebook"}[i%4]
		posts = append(posts, Post{
			ID:        string(rune('a' + i%26)),
			Platform:  platform,
			Likes:     int64(50 + i*40),
			Comments:  int64(i),
			Shares:    int64(i / 2),
			CreatedAt: at(i, 8+i%3),
		})
	}

	insights := GenerateInsights(BuildAggregates(posts, DefaultAggregateOptions()))

	assert.NotEmpty(t, insights)
	assert.LessOrEqual(t, len(insights), MaxInsights)
}
