package dto

import (
	"time"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/domain"
)

// MetaResponse describes the snapshot a response was computed from.
type MetaResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Filter     string `json:"filter"`
	ComputedAt string `json:"computed_at"`
}

// NewMeta builds the meta block of a snapshot.
func NewMeta(s *service.Snapshot) MetaResponse {
	return MetaResponse{
		Status:     string(s.Status),
		Error:      s.Error,
		Filter:     s.Filter,
		ComputedAt: s.ComputedAt.UTC().Format(time.RFC3339),
	}
}

// SummaryResponse is returned by GET /api/v1/analytics/summary.
type SummaryResponse struct {
	MetaResponse
	Summary domain.Aggregates `json:"summary"`
}

// PostResponse is a scored post.
type PostResponse struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	DisplayTitle      string  `json:"display_title"`
	Platform          string  `json:"platform"`
	ContentType       string  `json:"content_type"`
	Likes             int64   `json:"likes"`
	Comments          int64   `json:"comments"`
	Shares            int64   `json:"shares"`
	CreatedAt         string  `json:"created_at,omitempty"`
	WeightedScore     int64   `json:"weighted_score"`
	EngagementPercent float64 `json:"engagement_percent"`
	Performance       string  `json:"performance"`
}

// FromScoredPost converts a domain.ScoredPost to PostResponse.
func FromScoredPost(p domain.ScoredPost) PostResponse {
	resp := PostResponse{
		ID:                p.ID,
		Title:             p.Title,
		DisplayTitle:      p.DisplayTitle(),
		Platform:          p.Platform,
		ContentType:       p.ContentType,
		Likes:             p.Likes,
		Comments:          p.Comments,
		Shares:            p.Shares,
		WeightedScore:     p.Weighted,
		EngagementPercent: p.Engagement,
		Performance:       p.Performance,
	}
	if p.HasValidDate() {
		resp.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}

	return resp
}

// PostsResponse is returned by GET /api/v1/analytics/posts.
type PostsResponse struct {
	MetaResponse
	Total int            `json:"total"`
	Posts []PostResponse `json:"posts"`
}

// InsightsResponse is returned by GET /api/v1/analytics/insights.
type InsightsResponse struct {
	MetaResponse
	Insights []domain.Insight `json:"insights"`
}

// GroupsResponse is returned by the platform and content-type comparisons.
type GroupsResponse struct {
	MetaResponse
	Sort   string             `json:"sort"`
	Groups []domain.GroupStat `json:"groups"`
}

// ForecastResponse is returned by GET /api/v1/analytics/forecast.
type ForecastResponse struct {
	MetaResponse
	Forecast domain.Forecast `json:"forecast"`
}

// AskResponse is the assistant answer, raw and rendered from Markdown.
type AskResponse struct {
	Answer     string `json:"answer"`
	AnswerHTML string `json:"answer_html"`
}

// SyncResultResponse represents the response for a sync operation.
type SyncResultResponse struct {
	Source   string `json:"source"`
	Count    int    `json:"count"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// SyncResponse represents the response for sync all operation.
type SyncResponse struct {
	Results []SyncResultResponse `json:"results"`
	Summary SyncSummary          `json:"summary"`
}

// SyncSummary holds summary of sync operation.
type SyncSummary struct {
	TotalSynced int `json:"total_synced"`
	SourcesOK   int `json:"sources_ok"`
	SourcesFail int `json:"sources_fail"`
}

// FromSyncResult converts a single service.SyncResult.
func FromSyncResult(r service.SyncResult) SyncResultResponse {
	resp := SyncResultResponse{
		Source:   r.Source,
		Count:    r.Count,
		Duration: r.Duration.String(),
	}
	if r.Error != nil {
		resp.Error = r.Error.Error()
	}

	return resp
}

// FromSyncResults converts service.SyncResult slice to SyncResponse.
func FromSyncResults(results []service.SyncResult) SyncResponse {
	resp := SyncResponse{
		Results: make([]SyncResultResponse, len(results)),
	}

	for i, r := range results {
		if r.Error != nil {
			resp.Summary.SourcesFail++
		} else {
			resp.Summary.TotalSynced += r.Count
			resp.Summary.SourcesOK++
		}
		resp.Results[i] = FromSyncResult(r)
	}

	return resp
}

// SourcesResponse lists the registered video sources.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
