package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-insights-service/internal/domain"
)

type fakeAssistant struct {
	answer string
	err    error
	calls  int
	last   domain.AssistantRequest
}

func (f *fakeAssistant) Ask(_ context.Context, req domain.AssistantRequest) (string, error) {
	f.calls++
	f.last = req

	return f.answer, f.err
}

func manyPosts(n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = samplePosts[i%len(samplePosts)]
	}

	return posts
}

func TestAssistantService_Ask(t *testing.T) {
	assistant := &fakeAssistant{answer: "Post reels on Instagram."}
	analytics := newTestAnalytics(staticSource(manyPosts(8), nil), nil, nil)
	svc := NewAssistantService(assistant, analytics, nil, zap.NewNop())

	answer, err := svc.Ask(context.Background(), "  What should I post next?  ")
	require.NoError(t, err)

	assert.Equal(t, "Post reels on Instagram.", answer)
	assert.Equal(t, "What should I post next?", assistant.last.Question)
	assert.Len(t, assistant.last.RecentPosts, domain.MaxAssistantPosts)
	assert.Equal(t, 8, assistant.last.Summary.TotalPosts)
}

func TestAssistantService_Ask_EmptyQuestion(t *testing.T) {
	assistant := &fakeAssistant{}
	svc := NewAssistantService(assistant, newTestAnalytics(staticSource(nil, nil), nil, nil), nil, zap.NewNop())

	_, err := svc.Ask(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
	assert.Zero(t, assistant.calls)
}

func TestAssistantService_Ask_Unavailable(t *testing.T) {
	assistant := &fakeAssistant{err: errors.New("status 503")}
	svc := NewAssistantService(assistant, newTestAnalytics(staticSource(samplePosts, nil), nil, nil), nil, zap.NewNop())

	answer, err := svc.Ask(context.Background(), "Why did engagement drop?")

	assert.ErrorIs(t, err, domain.ErrAssistantUnavailable)
	assert.Empty(t, answer)
	assert.Equal(t, 1, assistant.calls)
}

func TestAssistantService_Ask_DisconnectedSourceStillAsks(t *testing.T) {
	assistant := &fakeAssistant{answer: "No data yet."}
	svc := NewAssistantService(assistant, newTestAnalytics(staticSource(nil, errors.New("down")), nil, nil), nil, zap.NewNop())

	answer, err := svc.Ask(context.Background(), "Anything?")
	require.NoError(t, err)

	assert.Equal(t, "No data yet.", answer)
	assert.Empty(t, assistant.last.RecentPosts)
}
