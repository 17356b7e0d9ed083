package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/transport/httpserver/dto"
	"social-insights-service/internal/transport/httpserver/middleware"
	"social-insights-service/internal/validator"
)

const dashboardTopPosts = 10

// rangeOption is one entry of the time range selector.
type rangeOption struct {
	Value    string
	Label    string
	Selected bool
}

// DashboardHandler renders the HTML dashboard pages.
type DashboardHandler struct {
	service   *service.AnalyticsService
	validator *validator.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.AnalyticsService, v *validator.Validator, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:   svc,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Render handles GET /dashboard
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	data, err := h.pageData(c, "Dashboard")
	if data == nil {
		return err
	}

	return c.Render("pages/dashboard", data, "layouts/base")
}

// Insights handles GET /insights
func (h *DashboardHandler) Insights(c *fiber.Ctx) error {
	data, err := h.pageData(c, "Insights")
	if data == nil {
		return err
	}

	return c.Render("pages/insights", data, "layouts/base")
}

func (h *DashboardHandler) pageData(c *fiber.Ctx, title string) (fiber.Map, error) {
	var q dto.AnalyticsQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Validate(&q); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snap, err := h.service.Snapshot(c.UserContext(), q.ToFilter(h.now()))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	}

	top := snap.Posts
	if len(top) > dashboardTopPosts {
		top = top[:dashboardTopPosts]
	}

	return fiber.Map{
		"Title":     title,
		"Session":   middleware.SessionFrom(c),
		"Snapshot":  snap,
		"Summary":   snap.Aggregates,
		"Platforms": domain.SortGroups(snap.Aggregates.Platforms, q.SortBy()),
		"Insights":  snap.Insights,
		"Forecast":  snap.Forecast,
		"Posts":     top,
		"Query":     q,
		"Ranges":    rangeOptions(q.Range),
	}, nil
}

func rangeOptions(selected string) []rangeOption {
	if selected == "" {
		selected = string(domain.RangeAll)
	}
	opts := []rangeOption{
		{Value: string(domain.Range7Days), Label: "Last 7 days"},
		{Value: string(domain.Range30Days), Label: "Last 30 days"},
		{Value: string(domain.RangeAll), Label: "All time"},
	}
	for i := range opts {
		opts[i].Selected = opts[i].Value == selected
	}

	return opts
}
