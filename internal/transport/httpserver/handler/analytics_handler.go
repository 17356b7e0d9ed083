// Package handler provides HTTP handlers for the API and dashboard pages.
package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/transport/httpserver/dto"
	"social-insights-service/internal/validator"
)

// AnalyticsHandler serves the analytics JSON API.
type AnalyticsHandler struct {
	service   *service.AnalyticsService
	validator *validator.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService, v *validator.Validator, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:   svc,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Summary handles GET /api/v1/analytics/summary
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	snap, _, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	return c.JSON(dto.SummaryResponse{
		MetaResponse: dto.NewMeta(snap),
		Summary:      snap.Aggregates,
	})
}

// Posts handles GET /api/v1/analytics/posts
func (h *AnalyticsHandler) Posts(c *fiber.Ctx) error {
	snap, q, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	scored := snap.Posts
	if q.Limit > 0 && len(scored) > q.Limit {
		scored = scored[:q.Limit]
	}
	posts := make([]dto.PostResponse, len(scored))
	for i, p := range scored {
		posts[i] = dto.FromScoredPost(p)
	}

	return c.JSON(dto.PostsResponse{
		MetaResponse: dto.NewMeta(snap),
		Total:        len(snap.Posts),
		Posts:        posts,
	})
}

// Insights handles GET /api/v1/analytics/insights
func (h *AnalyticsHandler) Insights(c *fiber.Ctx) error {
	snap, _, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	return c.JSON(dto.InsightsResponse{
		MetaResponse: dto.NewMeta(snap),
		Insights:     snap.Insights,
	})
}

// Platforms handles GET /api/v1/analytics/platforms
func (h *AnalyticsHandler) Platforms(c *fiber.Ctx) error {
	snap, q, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	return c.JSON(dto.GroupsResponse{
		MetaResponse: dto.NewMeta(snap),
		Sort:         string(q.SortBy()),
		Groups:       domain.SortGroups(snap.Aggregates.Platforms, q.SortBy()),
	})
}

// ContentTypes handles GET /api/v1/analytics/content-types
func (h *AnalyticsHandler) ContentTypes(c *fiber.Ctx) error {
	snap, q, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	return c.JSON(dto.GroupsResponse{
		MetaResponse: dto.NewMeta(snap),
		Sort:         string(q.SortBy()),
		Groups:       domain.SortGroups(snap.Aggregates.ContentTypes, q.SortBy()),
	})
}

// Forecast handles GET /api/v1/analytics/forecast
func (h *AnalyticsHandler) Forecast(c *fiber.Ctx) error {
	snap, _, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	return c.JSON(dto.ForecastResponse{
		MetaResponse: dto.NewMeta(snap),
		Forecast:     snap.Forecast,
	})
}

// Refresh handles POST /api/v1/analytics/refresh
func (h *AnalyticsHandler) Refresh(c *fiber.Ctx) error {
	h.logger.Info("manual refresh triggered")

	h.service.Invalidate(c.UserContext())
	snap, err := h.service.Refresh(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "refresh cancelled")
	}

	return c.JSON(dto.SummaryResponse{
		MetaResponse: dto.NewMeta(snap),
		Summary:      snap.Aggregates,
	})
}

// snapshot parses the query and loads the snapshot. A nil snapshot means the
// response has already been written, and err is what the handler returns.
func (h *AnalyticsHandler) snapshot(c *fiber.Ctx) (*service.Snapshot, *dto.AnalyticsQuery, error) {
	q, err := parseAnalyticsQuery(c, h.validator)
	if q == nil {
		return nil, nil, err
	}

	snap, err := h.service.Snapshot(c.UserContext(), q.ToFilter(h.now()))
	if err != nil {
		h.logger.Warn("snapshot aborted", zap.Error(err))
		return nil, nil, fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	}

	return snap, q, nil
}

func parseAnalyticsQuery(c *fiber.Ctx, v *validator.Validator) (*dto.AnalyticsQuery, error) {
	var q dto.AnalyticsQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := v.Validate(&q); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	return &q, nil
}
