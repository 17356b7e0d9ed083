package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/domain"
)

const reportTopPosts = 5

// ReportHandler renders the printable analytics report.
type ReportHandler struct {
	service *service.AnalyticsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.AnalyticsService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{service: svc, logger: logger, now: time.Now}
}

// Render handles GET /report. The document is self-contained so the browser
// can print it to PDF.
func (h *ReportHandler) Render(c *fiber.Ctx) error {
	snap, err := h.service.Snapshot(c.UserContext(), domain.PostFilter{})
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	}

	top := snap.Aggregates.TopPosts
	if len(top) > reportTopPosts {
		top = top[:reportTopPosts]
	}

	h.logger.Debug("rendering report", zap.String("status", string(snap.Status)))

	return c.Render("pages/report", fiber.Map{
		"Title":       "Engagement Report",
		"GeneratedAt": h.now().UTC().Format("January 2, 2006 15:04 MST"),
		"Snapshot":    snap,
		"Summary":     snap.Aggregates,
		"TopPosts":    top,
		"Insights":    snap.Insights,
	}, "layouts/report")
}
