// Package chat forwards analytics questions to an OpenAI-compatible
// chat-completions endpoint.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"social-insights-service/internal/config"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/infra/provider"
)

// Endpoint is the chat-completions path relative to the base URL.
const Endpoint = "/chat/completions"

// NoResponse is returned when the endpoint answers without any content.
const NoResponse = "No response from AI"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("assistant api key not configured")

// Client implements domain.Assistant.
type Client struct {
	client      *resty.Client
	cb          *gobreaker.CircuitBreaker[*CompletionResponse]
	model       string
	temperature float64
	apiKey      string
	logger      *zap.Logger
}

// New creates a chat client. Requests are never retried: a failed question is
// reported to the user, who may ask again.
func New(cfg config.AssistantConfig, logger *zap.Logger) *Client {
	return &Client{
		client: provider.NewRestyClient(provider.ClientConfig{
			BaseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
			Timeout: cfg.Timeout,
		}),
		cb:          provider.NewCircuitBreaker[*CompletionResponse]("assistant", cfg.CB, logger),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		apiKey:      cfg.APIKey,
		logger:      logger,
	}
}

// Ask sends the question with its analytics context and returns the answer text.
func (c *Client) Ask(ctx context.Context, req domain.AssistantRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	messages, err := buildMessages(req)
	if err != nil {
		return "", err
	}

	body := CompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    messages,
	}

	result, err := c.cb.Execute(func() (*CompletionResponse, error) {
		var out CompletionResponse
		r, err := c.client.R().
			SetContext(ctx).
			SetAuthToken(c.apiKey).
			SetBody(body).
			SetResult(&out).
			SetError(&out).
			Post(Endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() || out.Error != nil {
			msg := fmt.Sprintf("status %d", r.StatusCode())
			if out.Error != nil && out.Error.Message != "" {
				msg += ": " + out.Error.Message
			}
			return nil, fmt.Errorf("assistant returned %s", msg)
		}

		return &out, nil
	})
	if err != nil {
		c.logger.Warn("assistant request failed",
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return "", fmt.Errorf("asking assistant: %w", err)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return NoResponse, nil
	}

	return result.Choices[0].Message.Content, nil
}
