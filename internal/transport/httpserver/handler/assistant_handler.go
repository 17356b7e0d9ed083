package handler

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/transport/httpserver/dto"
	"social-insights-service/internal/validator"
)

// AssistantHandler answers questions about the analytics.
type AssistantHandler struct {
	service   *service.AssistantService
	validator *validator.Validator
	markdown  goldmark.Markdown
	logger    *zap.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(svc *service.AssistantService, v *validator.Validator, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		service:   svc,
		validator: v,
		// Raw HTML in answers is escaped: the unsafe renderer option stays off.
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		logger: logger,
	}
}

// Ask handles POST /api/v1/assistant/ask
func (h *AssistantHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	answer, err := h.service.Ask(c.UserContext(), req.Question)
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "EMPTY_QUESTION",
		})
	case errors.Is(err, domain.ErrAssistantUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: domain.ErrAssistantUnavailable.Error(),
			Code:  "ASSISTANT_UNAVAILABLE",
		})
	case err != nil:
		return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	}

	return c.JSON(dto.AskResponse{
		Answer:     answer,
		AnswerHTML: h.render(answer),
	})
}

// render converts the Markdown answer to HTML. It returns "" on failure and
// clients fall back to the plain answer.
func (h *AssistantHandler) render(answer string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(answer), &buf); err != nil {
		h.logger.Warn("failed to render answer markdown", zap.Error(err))
		return ""
	}

	return buf.String()
}
