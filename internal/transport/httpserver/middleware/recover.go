package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/transport/httpserver/dto"
)

// Recover turns a panicking handler into a 500 response.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("panic recovered",
				zap.Any("panic", r),
				zap.String("request_id", requestID(c)),
				zap.String("path", c.Path()),
				zap.ByteString("stack", debug.Stack()),
			)

			err = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: "internal server error",
				Code:  "PANIC",
			})
		}()

		return c.Next()
	}
}
