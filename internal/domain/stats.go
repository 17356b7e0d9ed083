package domain

import (
	"sort"
	"time"
)

// Trend is the direction of engagement over time.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

const (
	peakHourLimit      = 3
	peakHourMinPosts   = 2
	topPostLimit       = 3
	highPerformerRatio = 1.5
)

// ScoredPost is a post together with its derived scores.
type ScoredPost struct {
	Post
	Weighted    int64   `json:"weighted_score"`
	Engagement  float64 `json:"engagement_percent"`
	Performance string  `json:"performance"`
}

// GroupStat summarizes the posts sharing a platform or content type.
type GroupStat struct {
	Key           string  `json:"key"`
	Posts         int     `json:"posts"`
	Likes         int64   `json:"likes"`
	Comments      int64   `json:"comments"`
	Shares        int64   `json:"shares"`
	AvgEngagement float64 `json:"avg_engagement"`
	AvgWeighted   float64 `json:"avg_weighted_score"`
	Performance   string  `json:"performance"`
	BestPost      string  `json:"best_post"`
}

// HourStat summarizes the posts published in one hour of the day.
type HourStat struct {
	Hour          int     `json:"hour"`
	Posts         int     `json:"posts"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// Aggregates is the full statistics snapshot over a post collection.
type Aggregates struct {
	TotalPosts    int   `json:"total_posts"`
	TotalLikes    int64 `json:"total_likes"`
	TotalComments int64 `json:"total_comments"`
	TotalShares   int64 `json:"total_shares"`
	TotalWeighted int64 `json:"total_weighted_score"`

	AvgLikes      float64 `json:"avg_likes"`
	AvgComments   float64 `json:"avg_comments"`
	AvgShares     float64 `json:"avg_shares"`
	AvgWeighted   float64 `json:"avg_weighted_score"`
	AvgEngagement float64 `json:"avg_engagement"`

	Platforms    []GroupStat `json:"platforms"`
	ContentTypes []GroupStat `json:"content_types"`
	Hours        []HourStat  `json:"hours"`
	PeakHours    []int       `json:"peak_hours"`
	Trend        Trend       `json:"trend"`

	TopPosts    []ScoredPost `json:"top_posts"`
	BestContent []string     `json:"best_content"`

	HighPerformers     int     `json:"high_performers"`
	HighPerformerRatio float64 `json:"high_performer_ratio"`

	Scored []ScoredPost `json:"-"`
}

// AggregateOptions controls how BuildAggregates scores and buckets posts.
type AggregateOptions struct {
	Policy   ScoringPolicy
	Location *time.Location // hour-of-day buckets; UTC when nil
}

// DefaultAggregateOptions scores with DefaultPolicy and buckets hours in UTC.
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{Policy: DefaultPolicy, Location: time.UTC}
}

// ScorePosts normalizes and scores every post, preserving input order.
func ScorePosts(posts []Post, policy ScoringPolicy) []ScoredPost {
	scored := make([]ScoredPost, len(posts))
	for i, p := range posts {
		p = p.Normalize()
		pct := policy.EngagementPercent(p)
		scored[i] = ScoredPost{
			Post:        p,
			Weighted:    WeightedScore(p),
			Engagement:  pct,
			Performance: PerformanceLabel(pct),
		}
	}

	return scored
}

// BuildAggregates computes totals, breakdowns, peak hours, trend and top
// content for a post collection. It never fails: malformed posts are
// normalized, and posts without a valid date are left out of the hour and
// trend calculations only.
func BuildAggregates(posts []Post, opts AggregateOptions) Aggregates {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	agg := Aggregates{
		Platforms:    []GroupStat{},
		ContentTypes: []GroupStat{},
		Hours:        []HourStat{},
		PeakHours:    []int{},
		Trend:        TrendStable,
		TopPosts:     []ScoredPost{},
		BestContent:  []string{},
		Scored:       []ScoredPost{},
	}
	if len(posts) == 0 {
		return agg
	}

	scored := ScorePosts(posts, opts.Policy)
	agg.Scored = scored
	agg.TotalPosts = len(scored)

	var engagementSum float64
	for _, sp := range scored {
		agg.TotalLikes = satAdd(agg.TotalLikes, sp.Likes)
		agg.TotalComments = satAdd(agg.TotalComments, sp.Comments)
		agg.TotalShares = satAdd(agg.TotalShares, sp.Shares)
		agg.TotalWeighted = satAdd(agg.TotalWeighted, sp.Weighted)
		engagementSum += sp.Engagement
	}

	n := float64(agg.TotalPosts)
	agg.AvgLikes = float64(agg.TotalLikes) / n
	agg.AvgComments = float64(agg.TotalComments) / n
	agg.AvgShares = float64(agg.TotalShares) / n
	agg.AvgWeighted = float64(agg.TotalWeighted) / n
	agg.AvgEngagement = roundTo2Decimals(engagementSum / n)

	agg.Platforms = groupBy(scored, func(sp ScoredPost) string { return sp.Platform })
	agg.ContentTypes = groupBy(scored, func(sp ScoredPost) string { return sp.ContentType })

	agg.Hours = hourBreakdown(scored, loc)
	agg.PeakHours = peakHours(agg.Hours)
	agg.Trend = trendOf(scored)

	agg.TopPosts = topPosts(scored, topPostLimit)
	for _, sp := range agg.TopPosts {
		agg.BestContent = append(agg.BestContent, sp.DisplayTitle())
	}

	threshold := agg.AvgWeighted * highPerformerRatio
	for _, sp := range scored {
		if float64(sp.Weighted) > threshold {
			agg.HighPerformers++
		}
	}
	agg.HighPerformerRatio = float64(agg.HighPerformers) / n

	return agg
}

type groupAcc struct {
	stat          GroupStat
	engagementSum float64
	weightedSum   int64
	bestWeighted  int64
}

// groupBy builds one GroupStat per distinct key, sorted by mean engagement
// descending and then by key.
func groupBy(scored []ScoredPost, keyOf func(ScoredPost) string) []GroupStat {
	accs := make(map[string]*groupAcc)
	for _, sp := range scored {
		key := keyOf(sp)
		acc, ok := accs[key]
		if !ok {
			acc = &groupAcc{stat: GroupStat{Key: key}, bestWeighted: -1}
			accs[key] = acc
		}
		acc.stat.Posts++
		acc.stat.Likes = satAdd(acc.stat.Likes, sp.Likes)
		acc.stat.Comments = satAdd(acc.stat.Comments, sp.Comments)
		acc.stat.Shares = satAdd(acc.stat.Shares, sp.Shares)
		acc.engagementSum += sp.Engagement
		acc.weightedSum = satAdd(acc.weightedSum, sp.Weighted)
		if sp.Weighted > acc.bestWeighted {
			acc.bestWeighted = sp.Weighted
			acc.stat.BestPost = sp.DisplayTitle()
		}
	}

	groups := make([]GroupStat, 0, len(accs))
	for _, acc := range accs {
		posts := float64(acc.stat.Posts)
		acc.stat.AvgEngagement = roundTo2Decimals(acc.engagementSum / posts)
		acc.stat.AvgWeighted = roundTo2Decimals(float64(acc.weightedSum) / posts)
		acc.stat.Performance = PerformanceLabel(acc.stat.AvgEngagement)
		groups = append(groups, acc.stat)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].AvgEngagement != groups[j].AvgEngagement {
			return groups[i].AvgEngagement > groups[j].AvgEngagement
		}

		return groups[i].Key < groups[j].Key
	})

	return groups
}

func hourBreakdown(scored []ScoredPost, loc *time.Location) []HourStat {
	var (
		counts [24]int
		sums   [24]float64
	)
	for _, sp := range scored {
		if !sp.HasValidDate() {
			continue
		}
		h := sp.CreatedAt.In(loc).Hour()
		counts[h]++
		sums[h] += sp.Engagement
	}

	hours := []HourStat{}
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		hours = append(hours, HourStat{
			Hour:          h,
			Posts:         counts[h],
			AvgEngagement: roundTo2Decimals(sums[h] / float64(counts[h])),
		})
	}

	sort.SliceStable(hours, func(i, j int) bool {
		return hours[i].AvgEngagement > hours[j].AvgEngagement
	})

	return hours
}

// peakHours expects hours sorted by engagement descending.
func peakHours(hours []HourStat) []int {
	peaks := []int{}
	for _, h := range hours {
		if h.Posts < peakHourMinPosts {
			continue
		}
		peaks = append(peaks, h.Hour)
		if len(peaks) == peakHourLimit {
			break
		}
	}

	return peaks
}

// trendOf compares the mean weighted score of the later half of the dated
// posts with the earlier half. With an odd count the extra post belongs to
// the later half.
func trendOf(scored []ScoredPost) Trend {
	dated := make([]ScoredPost, 0, len(scored))
	for _, sp := range scored {
		if sp.HasValidDate() {
			dated = append(dated, sp)
		}
	}
	if len(dated) < 2 {
		return TrendStable
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].CreatedAt.Before(dated[j].CreatedAt)
	})

	mid := len(dated) / 2
	first := meanWeighted(dated[:mid])
	second := meanWeighted(dated[mid:])

	switch {
	case second > first:
		return TrendIncreasing
	case second < first:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func meanWeighted(posts []ScoredPost) float64 {
	var sum float64
	for _, sp := range posts {
		sum += float64(sp.Weighted)
	}

	return sum / float64(len(posts))
}

// topPosts returns the highest weighted posts; ties keep input order.
func topPosts(scored []ScoredPost, limit int) []ScoredPost {
	ranked := make([]ScoredPost, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weighted > ranked[j].Weighted
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}
