package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"social-insights-service/internal/domain"
	"social-insights-service/internal/metrics"
)

// SnapshotProvider supplies the analytics an assistant question is asked about.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, filter domain.PostFilter) (*Snapshot, error)
}

// AssistantService forwards dashboard questions to the assistant.
type AssistantService struct {
	assistant domain.Assistant
	snapshots SnapshotProvider
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(
	assistant domain.Assistant,
	snapshots SnapshotProvider,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AssistantService {
	return &AssistantService{
		assistant: assistant,
		snapshots: snapshots,
		metrics:   m,
		logger:    logger,
	}
}

// Ask sends the question together with the current summary and the most
// recent posts. Any forwarding failure is reported as
// domain.ErrAssistantUnavailable; questions are never retried.
func (s *AssistantService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}

	snap, err := s.snapshots.Snapshot(ctx, domain.PostFilter{})
	if err != nil {
		return "", err
	}

	req := domain.AssistantRequest{
		Question:    question,
		Summary:     domain.NewAssistantSummary(snap.Aggregates),
		RecentPosts: snap.RecentPosts(domain.MaxAssistantPosts),
	}

	s.logger.Debug("forwarding assistant question",
		zap.Int("question_length", len(question)),
		zap.Int("recent_posts", len(req.RecentPosts)),
		zap.String("source_status", string(snap.Status)),
	)

	answer, err := s.assistant.Ask(ctx, req)
	if err != nil {
		s.metrics.ObserveAssistant("error")
		s.logger.Warn("assistant request failed", zap.Error(err))

		return "", fmt.Errorf("%w: %w", domain.ErrAssistantUnavailable, err)
	}
	s.metrics.ObserveAssistant("ok")

	return answer, nil
}
