package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"social-insights-service/internal/domain"
)

const (
	listenerMinReconnect = 1 * time.Second
	listenerMaxReconnect = 30 * time.Second
	listenerPingInterval = 90 * time.Second
	notifyBuffer         = 16

	// sourceReconnect marks the synthetic event sent after the listener
	// reconnects, since notifications may have been missed meanwhile.
	sourceReconnect = "reconnect"
)

// Notifier implements domain.ChangeFeed with PostgreSQL LISTEN/NOTIFY.
type Notifier struct {
	db      *sql.DB
	dsn     string
	channel string
	logger  *zap.Logger
}

// NewNotifier creates a Notifier. db is used for NOTIFY; each subscription
// opens its own listener connection from dsn.
func NewNotifier(db *sql.DB, dsn, channel string, logger *zap.Logger) *Notifier {
	return &Notifier{db: db, dsn: dsn, channel: channel, logger: logger}
}

// Publish sends event on the channel.
func (n *Notifier) Publish(ctx context.Context, event domain.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding change event: %w", err)
	}

	if _, err := n.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", n.channel, string(payload)); err != nil {
		return fmt.Errorf("notifying %s: %w", n.channel, err)
	}

	return nil
}

// Subscribe listens on the channel until ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	listener := pq.NewListener(n.dsn, listenerMinReconnect, listenerMaxReconnect, n.logListenerEvent)
	if err := listener.Listen(n.channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listening on %s: %w", n.channel, err)
	}

	n.logger.Info("listening for post changes", zap.String("channel", n.channel))

	out := make(chan domain.ChangeEvent, notifyBuffer)
	go n.forward(ctx, listener, out)

	return out, nil
}

func (n *Notifier) forward(ctx context.Context, listener *pq.Listener, out chan<- domain.ChangeEvent) {
	defer close(out)
	defer func() {
		if err := listener.Close(); err != nil {
			n.logger.Warn("closing listener", zap.Error(err))
		}
	}()

	ping := time.NewTicker(listenerPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					n.logger.Warn("listener ping failed", zap.Error(err))
				}
			}()
		case msg := <-listener.Notify:
			event := n.decode(msg)
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// decode turns a notification into an event. A nil notification means the
// connection was re-established.
func (n *Notifier) decode(msg *pq.Notification) domain.ChangeEvent {
	if msg == nil {
		return domain.ChangeEvent{Source: sourceReconnect, At: time.Now().UTC()}
	}

	var event domain.ChangeEvent
	if err := json.Unmarshal([]byte(msg.Extra), &event); err != nil {
		n.logger.Debug("unrecognised notification payload",
			zap.String("channel", msg.Channel),
			zap.Error(err),
		)
		event = domain.ChangeEvent{Source: msg.Channel}
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	return event
}

func (n *Notifier) logListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		n.logger.Debug("listener connected", zap.String("channel", n.channel))
	case pq.ListenerEventDisconnected:
		n.logger.Warn("listener disconnected", zap.String("channel", n.channel), zap.Error(err))
	case pq.ListenerEventReconnected:
		n.logger.Info("listener reconnected", zap.String("channel", n.channel))
	case pq.ListenerEventConnectionAttemptFailed:
		n.logger.Warn("listener connection attempt failed", zap.String("channel", n.channel), zap.Error(err))
	}
}
