package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/validator"
)

func TestAnalyticsQuery_Validation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		req     AnalyticsQuery
		field   string
		wantErr bool
	}{
		{name: "empty", req: AnalyticsQuery{}},
		{name: "full", req: AnalyticsQuery{Range: "30days", Platform: "LinkedIn", Sort: "likes", Limit: 50}},
		{name: "bad range", req: AnalyticsQuery{Range: "90days"}, field: "range", wantErr: true},
		{name: "bad sort", req: AnalyticsQuery{Sort: "shares"}, field: "sort", wantErr: true},
		{name: "limit too large", req: AnalyticsQuery{Limit: 501}, field: "limit", wantErr: true},
		{name: "platform too long", req: AnalyticsQuery{Platform: string(make([]byte, 51))}, field: "platform", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			errs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestAnalyticsQuery_ToFilter(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	q := AnalyticsQuery{Range: "7days", Platform: "Instagram"}
	f := q.ToFilter(now)
	assert.Equal(t, domain.Range7Days, f.Range)
	assert.Equal(t, "Instagram", f.Platform)
	assert.Equal(t, now, f.Now)

	empty := AnalyticsQuery{}
	assert.True(t, empty.ToFilter(now).IsZero())
	assert.Equal(t, domain.SortByEngagement, empty.SortBy())

	byLikes := AnalyticsQuery{Sort: "likes"}
	assert.Equal(t, domain.SortByLikes, byLikes.SortBy())
}

func TestCredentialsRequest_Validation(t *testing.T) {
	v := validator.New()

	assert.NoError(t, v.Validate(&CredentialsRequest{Email: "ana@example.com", Password: "secret-pass"}))
	assert.Error(t, v.Validate(&CredentialsRequest{Email: "ana", Password: "secret-pass"}))
	assert.Error(t, v.Validate(&CredentialsRequest{Email: "ana@example.com"}))
}

func TestFromScoredPost(t *testing.T) {
	p := domain.ScorePosts([]domain.Post{
		{ID: "7", Platform: "LinkedIn", Likes: 100, Comments: 10, Shares: 5},
	}, domain.DefaultPolicy)[0]

	resp := FromScoredPost(p)

	assert.Equal(t, "Post #7", resp.DisplayTitle)
	assert.Equal(t, int64(135), resp.WeightedScore)
	assert.Equal(t, "static", resp.ContentType)
	assert.Empty(t, resp.CreatedAt)
}

func TestFromSyncResults(t *testing.T) {
	resp := FromSyncResults([]service.SyncResult{
		{Source: "youtube", Count: 10, Duration: time.Second},
		{Source: "vimeo", Error: errors.New("quota exceeded")},
	})

	assert.Equal(t, 10, resp.Summary.TotalSynced)
	assert.Equal(t, 1, resp.Summary.SourcesOK)
	assert.Equal(t, 1, resp.Summary.SourcesFail)
	assert.Equal(t, "quota exceeded", resp.Results[1].Error)
	assert.Equal(t, "1s", resp.Results[0].Duration)
}
