package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-insights-service/internal/config"
	"social-insights-service/internal/domain"
)

const testEndpoint = "https://llm.example.com/openai/v1/chat/completions"

func newTestClient(apiKey string) *Client {
	client := New(config.AssistantConfig{
		BaseURL:     "https://llm.example.com/openai/v1/",
		APIKey:      apiKey,
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.5,
		Timeout:     5 * time.Second,
		CB: config.CBConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			FailureRatio: 0.6,
		},
	}, zap.NewNop())

	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func testRequest(posts int) domain.AssistantRequest {
	recent := make([]domain.Post, posts)
	for i := range recent {
		recent[i] = domain.Post{ID: string(rune('a' + i)), Platform: "LinkedIn", Likes: int64(i)}
	}

	return domain.AssistantRequest{
		Question:    "Which platform should I focus on?",
		Summary:     domain.AssistantSummary{TotalPosts: posts, AvgEngagement: 44.83, Trend: domain.TrendStable},
		RecentPosts: recent,
	}
}

func TestClient_Ask_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	var captured CompletionRequest
	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "Focus on **LinkedIn**."}}},
			})
		})

	client := newTestClient("secret")
	answer, err := client.Ask(context.Background(), testRequest(8))

	require.NoError(t, err)
	assert.Equal(t, "Focus on **LinkedIn**.", answer)

	assert.Equal(t, "llama-3.1-8b-instant", captured.Model)
	assert.InDelta(t, 0.5, captured.Temperature, 1e-9)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, OutOfScopeReply)

	user := captured.Messages[1].Content
	assert.True(t, strings.HasPrefix(user, "USER QUESTION:\nWhich platform should I focus on?\n\nANALYTICS SUMMARY:\n"))
	assert.Contains(t, user, `"avg_engagement": 44.83`)

	postsJSON := user[strings.Index(user, "RECENT POSTS:\n")+len("RECENT POSTS:\n"):]
	var sent []promptPost
	require.NoError(t, json.Unmarshal([]byte(postsJSON), &sent))
	assert.Len(t, sent, domain.MaxAssistantPosts, "recent posts are truncated")
	assert.Equal(t, "Post #a", sent[0].Title)
}

func TestClient_Ask_EmptyChoices(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"choices": []any{}}))

	answer, err := newTestClient("secret").Ask(context.Background(), testRequest(1))

	require.NoError(t, err)
	assert.Equal(t, NoResponse, answer)
}

func TestClient_Ask_APIError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "Invalid API Key", "type": "invalid_request_error"},
		}))

	client := newTestClient("wrong")
	_, err := client.Ask(context.Background(), testRequest(1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401: Invalid API Key")
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "assistant calls are not retried")
}

func TestClient_Ask_ServerErrorNotRetried(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	_, err := newTestClient("secret").Ask(context.Background(), testRequest(1))

	require.Error(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClient_Ask_NotConfigured(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	_, err := newTestClient("").Ask(context.Background(), testRequest(1))

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestClient_Ask_CircuitOpens(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	client := newTestClient("secret")
	for i := 0; i < 3; i++ {
		_, _ = client.Ask(context.Background(), testRequest(1))
	}

	_, err := client.Ask(context.Background(), testRequest(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}
