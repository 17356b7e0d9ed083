package handler

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const keepAliveInterval = 25 * time.Second

// RefreshNotifier hands out refresh signals.
type RefreshNotifier interface {
	Listen() (<-chan struct{}, func())
}

// EventsHandler streams refresh notifications to the browser as
// server-sent events.
type EventsHandler struct {
	notifier  RefreshNotifier
	done      <-chan struct{}
	keepAlive time.Duration
	logger    *zap.Logger
}

// NewEventsHandler creates a new EventsHandler. Open streams end when done
// is closed.
func NewEventsHandler(notifier RefreshNotifier, done <-chan struct{}, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		notifier:  notifier,
		done:      done,
		keepAlive: keepAliveInterval,
		logger:    logger,
	}
}

// Stream handles GET /api/v1/events
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	signals, stop := h.notifier.Listen()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer stop()

		if !h.write(w, "event: ready\ndata: {}\n\n") {
			return
		}

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				msg := fmt.Sprintf("event: refresh\ndata: {\"at\":%q}\n\n", time.Now().UTC().Format(time.RFC3339))
				if !h.write(w, msg) {
					return
				}
			case <-ticker.C:
				if !h.write(w, ": keep-alive\n\n") {
					return
				}
			}
		}
	})

	return nil
}

// write reports false once the client has gone away.
func (h *EventsHandler) write(w *bufio.Writer, msg string) bool {
	if _, err := w.WriteString(msg); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		h.logger.Debug("event stream closed", zap.Error(err))
		return false
	}

	return true
}
