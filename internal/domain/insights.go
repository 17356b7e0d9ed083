package domain

import (
	"fmt"
	"math"
	"strconv"
)

// InsightCategory groups insights on the dashboard.
type InsightCategory string

const (
	CategoryPerformance    InsightCategory = "performance"
	CategoryTiming         InsightCategory = "timing"
	CategoryContent        InsightCategory = "content"
	CategoryStrategy       InsightCategory = "strategy"
	CategoryOptimization   InsightCategory = "optimization"
	CategoryRecommendation InsightCategory = "recommendation"
)

// Impact rates how much acting on an insight matters.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Fixed confidence of each insight rule.
const (
	PlatformDominanceConfidence = 0.85
	PeakTimingConfidence        = 0.78
	TrendConfidence             = 0.82
	TopContentConfidence        = 0.9
	HighPerformerConfidence     = 0.75
	ConversationConfidence      = 0.8
	PlatformBreakdownConfidence = 0.88
)

// MaxInsights caps the number of generated insights.
const MaxInsights = 10

const (
	allPlatforms        = "All Platforms"
	dominanceFactor     = 1.5
	highPerformerTarget = 0.30
	commentRatioFloor   = 0.10
	breakdownPlatforms  = 3
	breakdownMinPosts   = 3
	titlePreviewLength  = 40
)

// Insight is a templated statement triggered by a threshold rule.
type Insight struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    InsightCategory `json:"category"`
	Platform    string          `json:"platform"`
	Confidence  float64         `json:"confidence"`
	DataPoints  []string        `json:"data_points"`
	Impact      Impact          `json:"impact"`
}

type insightRule func(a Aggregates) []Insight

// GenerateInsights applies the insight rules in order and returns at most
// MaxInsights results, numbered from 1.
func GenerateInsights(a Aggregates) []Insight {
	rules := []insightRule{
		platformDominance,
		peakTiming,
		trendInsight,
		topContent,
		highPerformerShare,
		conversationRatio,
		platformBreakdown,
	}

	insights := []Insight{}
	for _, rule := range rules {
		insights = append(insights, rule(a)...)
	}
	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	for i := range insights {
		insights[i].ID = i + 1
	}

	return insights
}

func platformDominance(a Aggregates) []Insight {
	if len(a.Platforms) < 2 {
		return nil
	}
	best := a.Platforms[0]
	worst := a.Platforms[len(a.Platforms)-1]
	if best.AvgEngagement <= worst.AvgEngagement*dominanceFactor {
		return nil
	}

	gap := "well ahead of " + worst.Key
	if worst.AvgEngagement > 0 {
		gap = fmt.Sprintf("%s%% higher than %s", round0((best.AvgEngagement/worst.AvgEngagement-1)*100), worst.Key)
	}

	return []Insight{{
		Title: best.Key + " Outperforming Other Platforms",
		Description: fmt.Sprintf("%s has %s average engagement, which is %s. Focus your efforts here.",
			best.Key, round0(best.AvgEngagement), gap),
		Category:   CategoryPerformance,
		Platform:   best.Key,
		Confidence: PlatformDominanceConfidence,
		DataPoints: []string{
			fmt.Sprintf("%s: %s avg engagement", best.Key, round0(best.AvgEngagement)),
			fmt.Sprintf("%s: %s avg engagement", worst.Key, round0(worst.AvgEngagement)),
			fmt.Sprintf("%d posts on %s", best.Posts, best.Key),
		},
		Impact: ImpactHigh,
	}}
}

func peakTiming(a Aggregates) []Insight {
	if len(a.PeakHours) == 0 {
		return nil
	}
	best := a.PeakHours[0]

	points := make([]string, 0, len(a.PeakHours))
	for _, h := range a.PeakHours {
		points = append(points, fmt.Sprintf("%d:00 - %d:00: %s avg engagement",
			h, (h+1)%24, round0(hourEngagement(a.Hours, h))))
	}

	return []Insight{{
		Title: "Optimal Posting Times Identified",
		Description: fmt.Sprintf("Posts published around %d:00 average %s%% engagement. Schedule your content during peak hours.",
			best, round0(hourEngagement(a.Hours, best))),
		Category:   CategoryTiming,
		Platform:   allPlatforms,
		Confidence: PeakTimingConfidence,
		DataPoints: points,
		Impact:     ImpactMedium,
	}}
}

func trendInsight(a Aggregates) []Insight {
	if a.Trend == TrendStable || a.Trend == "" {
		return nil
	}

	label, advice, impact := "Improving", "Keep up the good work!", ImpactMedium
	if a.Trend == TrendDecreasing {
		label, advice, impact = "Declining", "Consider revising your content strategy.", ImpactHigh
	}

	return []Insight{{
		Title:       "Engagement Trend: " + label,
		Description: fmt.Sprintf("Your content engagement is %s. %s", a.Trend, advice),
		Category:    CategoryPerformance,
		Platform:    allPlatforms,
		Confidence:  TrendConfidence,
		DataPoints: []string{
			"Average engagement: " + round0(a.AvgWeighted),
			fmt.Sprintf("Total posts analyzed: %d", a.TotalPosts),
			"Trend: " + string(a.Trend),
		},
		Impact: impact,
	}}
}

func topContent(a Aggregates) []Insight {
	if len(a.TopPosts) == 0 {
		return nil
	}
	best := a.TopPosts[0]

	return []Insight{{
		Title: "Top Performing Content Analysis",
		Description: fmt.Sprintf("Your best post %q received %d engagement. Analyze what made this content successful.",
			preview(best.DisplayTitle(), titlePreviewLength), best.Weighted),
		Category:   CategoryContent,
		Platform:   best.Platform,
		Confidence: TopContentConfidence,
		DataPoints: []string{
			fmt.Sprintf("Likes: %d", best.Likes),
			fmt.Sprintf("Comments: %d", best.Comments),
			fmt.Sprintf("Shares: %d", best.Shares),
			fmt.Sprintf("Total engagement score: %d", best.Weighted),
		},
		Impact: ImpactHigh,
	}}
}

func highPerformerShare(a Aggregates) []Insight {
	if a.TotalPosts == 0 || a.HighPerformerRatio >= highPerformerTarget {
		return nil
	}
	current := round0(a.HighPerformerRatio * 100)

	return []Insight{{
		Title:       "Need More High-Performing Content",
		Description: fmt.Sprintf("Only %s%% of your posts are performing well above average. Focus on creating more engaging content.", current),
		Category:    CategoryOptimization,
		Platform:    allPlatforms,
		Confidence:  HighPerformerConfidence,
		DataPoints: []string{
			fmt.Sprintf("High-performing posts: %d/%d", a.HighPerformers, a.TotalPosts),
			"Target: >30% high-performing content",
			"Current: " + current + "%",
		},
		Impact: ImpactMedium,
	}}
}

func conversationRatio(a Aggregates) []Insight {
	if a.AvgLikes <= 0 {
		return nil
	}
	ratio := a.AvgComments / a.AvgLikes
	if ratio >= commentRatioFloor {
		return nil
	}

	return []Insight{{
		Title: "Increase Audience Conversations",
		Description: fmt.Sprintf("Your content receives %.1f likes per post but only %.1f comments. Try asking questions to spark discussions.",
			a.AvgLikes, a.AvgComments),
		Category:   CategoryStrategy,
		Platform:   allPlatforms,
		Confidence: ConversationConfidence,
		DataPoints: []string{
			fmt.Sprintf("Average likes: %.1f", a.AvgLikes),
			fmt.Sprintf("Average comments: %.1f", a.AvgComments),
			fmt.Sprintf("Comment-to-like ratio: %.1f%%", ratio*100),
		},
		Impact: ImpactMedium,
	}}
}

func platformBreakdown(a Aggregates) []Insight {
	var insights []Insight
	for i, p := range a.Platforms {
		if i >= breakdownPlatforms {
			break
		}
		if p.Posts < breakdownMinPosts {
			continue
		}

		verdict := "Consider optimizing content for this platform."
		if p.AvgEngagement > a.AvgEngagement {
			verdict = "This is above your average!"
		}

		insights = append(insights, Insight{
			Title: p.Key + " Performance Breakdown",
			Description: fmt.Sprintf("%s has %d posts with average engagement of %s. %s",
				p.Key, p.Posts, round0(p.AvgEngagement), verdict),
			Category:   CategoryRecommendation,
			Platform:   p.Key,
			Confidence: PlatformBreakdownConfidence,
			DataPoints: []string{
				fmt.Sprintf("Posts: %d", p.Posts),
				"Avg engagement: " + round0(p.AvgEngagement),
				fmt.Sprintf("Rank: #%d among %d platforms", i+1, len(a.Platforms)),
			},
			Impact: ImpactMedium,
		})
	}

	return insights
}

func hourEngagement(hours []HourStat, hour int) float64 {
	for _, h := range hours {
		if h.Hour == hour {
			return h.AvgEngagement
		}
	}

	return 0
}

// round0 formats a value rounded half away from zero.
func round0(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	return string(r[:limit]) + "..."
}
