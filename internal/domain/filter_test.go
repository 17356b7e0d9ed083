package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeRange
		wantErr bool
	}{
		{"", RangeAll, false},
		{"all", RangeAll, false},
		{"7days", Range7Days, false},
		{"30DAYS", Range30Days, false},
		{"90days", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTimeRange(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPostFilter_Apply(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	posts := []Post{
		{ID: "fresh", Platform: "Instagram", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "week-old", Platform: "linkedin", CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{ID: "ancient", Platform: "LinkedIn", CreatedAt: now.AddDate(-1, 0, 0)},
		{ID: "undated", Platform: "Instagram"},
	}

	ids := func(ps []Post) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter PostFilter
		want   []string
	}{
		{"zero filter keeps all", PostFilter{}, []string{"fresh", "week-old", "ancient", "undated"}},
		{"seven days", PostFilter{Range: Range7Days, Now: now}, []string{"fresh"}},
		{"thirty days", PostFilter{Range: Range30Days, Now: now}, []string{"fresh", "week-old"}},
		{"platform is case-insensitive", PostFilter{Platform: "LINKEDIN", Now: now}, []string{"week-old", "ancient"}},
		{"platform all", PostFilter{Platform: "all", Now: now}, []string{"fresh", "week-old", "ancient", "undated"}},
		{"range and platform", PostFilter{Range: Range30Days, Platform: "Instagram", Now: now}, []string{"fresh"}},
		{"no post on platform", PostFilter{Platform: "Unknown"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(posts)))
		})
	}
}

func TestPostFilter_Key(t *testing.T) {
	assert.Equal(t, "all:all", PostFilter{}.Key())
	assert.Equal(t, "7days:Instagram", PostFilter{Range: Range7Days, Platform: "Instagram"}.Key())
	assert.True(t, PostFilter{Range: RangeAll, Platform: "All"}.IsZero())
	assert.False(t, PostFilter{Platform: "X"}.IsZero())
}

func TestSortGroups(t *testing.T) {
	groups := []GroupStat{
		{Key: "A", Posts: 5, Likes: 10, AvgEngagement: 30},
		{Key: "B", Posts: 9, Likes: 400, AvgEngagement: 20},
		{Key: "C", Posts: 5, Likes: 50, AvgEngagement: 60},
	}

	keys := func(gs []GroupStat) []string {
		out := make([]string, len(gs))
		for i, g := range gs {
			out[i] = g.Key
		}
		return out
	}

	assert.Equal(t, []string{"C", "A", "B"}, keys(SortGroups(groups, SortByEngagement)))
	assert.Equal(t, []string{"B", "A", "C"}, keys(SortGroups(groups, SortByPosts)))
	assert.Equal(t, []string{"B", "C", "A"}, keys(SortGroups(groups, SortByLikes)))
	assert.Equal(t, "A", groups[0].Key, "input is not reordered")
}
