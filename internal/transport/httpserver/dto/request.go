// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"time"

	"social-insights-service/internal/domain"
)

// AnalyticsQuery holds the query parameters shared by the analytics endpoints
// and the dashboard pages.
type AnalyticsQuery struct {
	Range    string `query:"range" validate:"omitempty,oneof=7days 30days all"`
	Platform string `query:"platform" validate:"max=50"`
	Sort     string `query:"sort" validate:"omitempty,oneof=engagement posts likes"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// ToFilter converts the query to a post filter evaluated at now.
func (q *AnalyticsQuery) ToFilter(now time.Time) domain.PostFilter {
	r, err := domain.ParseTimeRange(q.Range)
	if err != nil {
		r = domain.RangeAll
	}

	return domain.PostFilter{Range: r, Platform: q.Platform, Now: now}
}

// SortBy returns the requested group ordering, engagement by default.
func (q *AnalyticsQuery) SortBy() domain.GroupSort {
	if q.Sort == "" {
		return domain.SortByEngagement
	}

	return domain.GroupSort(q.Sort)
}

// AskRequest is the body of POST /api/v1/assistant/ask. An empty question is
// rejected by the service so that blank and whitespace-only input agree.
type AskRequest struct {
	Question string `json:"question" form:"question" validate:"max=2000"`
}

// CredentialsRequest is the login and signup form.
type CredentialsRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=320"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}
