// Package registry builds the configured import sources.
package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"social-insights-service/internal/config"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/infra/provider/youtube"
)

// NewSources creates every enabled video source. A source that is enabled
// but missing credentials is an error.
func NewSources(ctx context.Context, cfg config.YouTubeConfig, logger *zap.Logger) ([]domain.VideoSource, error) {
	sources := make([]domain.VideoSource, 0, 1)

	if cfg.Enabled {
		if cfg.APIKey == "" || cfg.ChannelID == "" {
			return nil, fmt.Errorf("youtube source enabled without api_key and channel_id")
		}

		client, err := youtube.New(ctx, cfg, logger.Named(youtube.SourceName))
		if err != nil {
			return nil, err
		}
		sources = append(sources, client)
	}

	return sources, nil
}
