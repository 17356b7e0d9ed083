// Package provider holds the HTTP client and circuit breaker plumbing shared
// by outbound integrations.
package provider

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/config"
)

// minRequestsToTrip keeps a breaker closed until it has seen a few calls.
const minRequestsToTrip = 3

// ClientConfig holds configuration for an outbound HTTP client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
	CB      config.CBConfig
}

// RetryConfig holds resty retry settings. MaxAttempts of 0 disables retries.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// NewRestyClient creates a resty client that retries network errors and 5xx.
func NewRestyClient(cfg ClientConfig) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts)

	if cfg.Retry.MaxAttempts > 0 {
		client.
			SetRetryWaitTime(cfg.Retry.WaitTime).
			SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return r.StatusCode() >= 500
			})
	}

	return client
}

// NewCircuitBreaker creates a breaker that trips on the configured failure
// ratio and logs every state change.
func NewCircuitBreaker[T any](name string, cfg config.CBConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequestsToTrip {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)

			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}
