// Package nats provides a NATS-backed change feed for deployments where post
// writers publish changes instead of relying on a database trigger.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"social-insights-service/internal/config"
	"social-insights-service/internal/domain"
)

const subscriberBuffer = 16

// Connect opens a NATS connection with reconnect handling.
func Connect(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("social-insights-service"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", cfg.URL, err)
	}

	return nc, nil
}

// Notifier implements domain.ChangeFeed on a NATS subject.
type Notifier struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewNotifier creates a Notifier publishing and subscribing on subject.
func NewNotifier(conn *nats.Conn, subject string, logger *zap.Logger) *Notifier {
	return &Notifier{conn: conn, subject: subject, logger: logger}
}

// Publish sends event on the subject and flushes so that it is on the wire
// before returning.
func (n *Notifier) Publish(ctx context.Context, event domain.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding change event: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", n.subject, err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing %s: %w", n.subject, err)
	}

	return nil
}

// Subscribe delivers events from the subject until ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	msgs := make(chan *nats.Msg, subscriberBuffer)
	sub, err := n.conn.ChanSubscribe(n.subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", n.subject, err)
	}

	n.logger.Info("listening for post changes", zap.String("subject", n.subject))

	out := make(chan domain.ChangeEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				n.logger.Debug("unsubscribing", zap.String("subject", n.subject), zap.Error(err))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				select {
				case out <- n.decode(msg):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (n *Notifier) decode(msg *nats.Msg) domain.ChangeEvent {
	var event domain.ChangeEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		n.logger.Debug("unrecognised change payload", zap.String("subject", msg.Subject), zap.Error(err))
		event = domain.ChangeEvent{Source: msg.Subject}
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	return event
}
