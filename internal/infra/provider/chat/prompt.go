package chat

import (
	"encoding/json"
	"fmt"

	"social-insights-service/internal/domain"
)

// OutOfScopeReply is what the assistant is told to answer to unrelated questions.
const OutOfScopeReply = "I can only answer questions related to your social media analytics and performance data."

const systemPrompt = `You are an analytics assistant built into a social media analytics dashboard.

You may ONLY answer questions about:
- social media performance analysis
- engagement metrics (likes, comments, shares)
- insights derived from the user's own post data
- content strategy recommendations based on the provided analytics
- dashboard features such as comparisons, insights and reports

You must NOT answer general knowledge, unrelated technical, academic or
personal questions, give generic advice that is not tied to the provided data,
or act like a general-purpose chatbot.

If a question is outside this scope, reply exactly:
"` + OutOfScopeReply + `"

Explain insights in clear, non-technical language. Reference only the
ANALYTICS SUMMARY and RECENT POSTS you are given and never invent data. Be
concise, actionable and practical. Do not mention models, APIs or being an AI.`

// promptPost is the wire shape of a recent post.
type promptPost struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Platform    string `json:"platform"`
	ContentType string `json:"content_type"`
	Likes       int64  `json:"likes"`
	Comments    int64  `json:"comments"`
	Shares      int64  `json:"shares"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// buildMessages renders the fixed system prompt and the user turn carrying the
// question, the summary and at most domain.MaxAssistantPosts posts.
func buildMessages(req domain.AssistantRequest) ([]Message, error) {
	summary, err := json.MarshalIndent(req.Summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}

	recent := domain.TruncatePosts(req.RecentPosts, domain.MaxAssistantPosts)
	posts := make([]promptPost, len(recent))
	for i, p := range recent {
		posts[i] = promptPost{
			ID:          p.ID,
			Title:       p.DisplayTitle(),
			Platform:    p.Platform,
			ContentType: p.ContentType,
			Likes:       p.Likes,
			Comments:    p.Comments,
			Shares:      p.Shares,
		}
		if p.HasValidDate() {
			posts[i].CreatedAt = p.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
	}
	postsJSON, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding posts: %w", err)
	}

	user := fmt.Sprintf("USER QUESTION:\n%s\n\nANALYTICS SUMMARY:\n%s\n\nRECENT POSTS:\n%s\n",
		req.Question, summary, postsJSON)

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}, nil
}
