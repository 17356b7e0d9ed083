package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeRange limits analysis to recent posts.
type TimeRange string

const (
	Range7Days  TimeRange = "7days"
	Range30Days TimeRange = "30days"
	RangeAll    TimeRange = "all"
)

// ParseTimeRange accepts "7days", "30days", "all" or an empty string (all).
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(strings.ToLower(strings.TrimSpace(s))) {
	case "", RangeAll:
		return RangeAll, nil
	case Range7Days:
		return Range7Days, nil
	case Range30Days:
		return Range30Days, nil
	default:
		return "", fmt.Errorf("unknown time range %q", s)
	}
}

// Window returns the lookback duration, or 0 for RangeAll.
func (r TimeRange) Window() time.Duration {
	switch r {
	case Range7Days:
		return 7 * 24 * time.Hour
	case Range30Days:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// PostFilter selects the posts a snapshot is computed over.
type PostFilter struct {
	Range    TimeRange
	Platform string // empty or "all" keeps every platform
	Now      time.Time
}

// IsZero reports whether the filter keeps every post.
func (f PostFilter) IsZero() bool {
	return f.Range.Window() == 0 && f.platform() == ""
}

// Key identifies the filter in cache keys.
func (f PostFilter) Key() string {
	r := f.Range
	if r == "" {
		r = RangeAll
	}
	p := f.platform()
	if p == "" {
		p = "all"
	}

	return string(r) + ":" + p
}

// Apply returns the posts that pass the filter. Ranged filters drop posts
// without a valid date.
func (f PostFilter) Apply(posts []Post) []Post {
	if f.IsZero() {
		return posts
	}

	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	var cutoff time.Time
	if w := f.Range.Window(); w > 0 {
		cutoff = now.Add(-w)
	}
	platform := f.platform()

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if !cutoff.IsZero() && (!p.HasValidDate() || p.CreatedAt.Before(cutoff)) {
			continue
		}
		if platform != "" && !strings.EqualFold(p.Normalize().Platform, platform) {
			continue
		}
		out = append(out, p)
	}

	return out
}

func (f PostFilter) platform() string {
	p := strings.TrimSpace(f.Platform)
	if strings.EqualFold(p, "all") {
		return ""
	}

	return p
}

// GroupSort orders platform or content type comparisons.
type GroupSort string

const (
	SortByEngagement GroupSort = "engagement"
	SortByPosts      GroupSort = "posts"
	SortByLikes      GroupSort = "likes"
)

// SortGroups returns a copy of groups ordered by the given field, descending,
// with the key as tiebreaker.
func SortGroups(groups []GroupStat, by GroupSort) []GroupStat {
	out := make([]GroupStat, len(groups))
	copy(out, groups)

	less := func(a, b GroupStat) (bool, bool) {
		switch by {
		case SortByPosts:
			return a.Posts > b.Posts, a.Posts == b.Posts
		case SortByLikes:
			return a.Likes > b.Likes, a.Likes == b.Likes
		default:
			return a.AvgEngagement > b.AvgEngagement, a.AvgEngagement == b.AvgEngagement
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		before, equal := less(out[i], out[j])
		if equal {
			return out[i].Key < out[j].Key
		}

		return before
	})

	return out
}
