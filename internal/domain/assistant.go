package domain

// MaxAssistantPosts is how many recent posts are sent along with a question.
const MaxAssistantPosts = 5

// AssistantRequest is what the Q&A forwarder transmits.
type AssistantRequest struct {
	Question    string
	Summary     AssistantSummary
	RecentPosts []Post
}

// PlatformSummary is one platform line of an AssistantSummary.
type PlatformSummary struct {
	Platform      string  `json:"platform"`
	Posts         int     `json:"posts"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// AssistantSummary is the compact analytics context given to the assistant.
type AssistantSummary struct {
	TotalPosts    int               `json:"total_posts"`
	TotalLikes    int64             `json:"total_likes"`
	TotalComments int64             `json:"total_comments"`
	TotalShares   int64             `json:"total_shares"`
	AvgEngagement float64           `json:"avg_engagement"`
	Trend         Trend             `json:"trend"`
	PeakHours     []int             `json:"peak_hours"`
	TopContent    []string          `json:"top_content"`
	Platforms     []PlatformSummary `json:"platforms"`
}

// NewAssistantSummary condenses aggregates for the assistant prompt.
func NewAssistantSummary(a Aggregates) AssistantSummary {
	s := AssistantSummary{
		TotalPosts:    a.TotalPosts,
		TotalLikes:    a.TotalLikes,
		TotalComments: a.TotalComments,
		TotalShares:   a.TotalShares,
		AvgEngagement: a.AvgEngagement,
		Trend:         a.Trend,
		PeakHours:     a.PeakHours,
		TopContent:    a.BestContent,
		Platforms:     make([]PlatformSummary, 0, len(a.Platforms)),
	}
	for _, p := range a.Platforms {
		s.Platforms = append(s.Platforms, PlatformSummary{
			Platform:      p.Key,
			Posts:         p.Posts,
			AvgEngagement: p.AvgEngagement,
		})
	}

	return s
}

// TruncatePosts returns at most limit posts from the front of posts.
func TruncatePosts(posts []Post, limit int) []Post {
	if limit < 0 {
		limit = 0
	}
	if len(posts) <= limit {
		return posts
	}

	return posts[:limit]
}
