// Package youtube imports a channel's latest uploads as posts using the
// YouTube Data API.
package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"social-insights-service/internal/config"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/infra/provider"
)

const (
	// SourceName identifies this importer in sync results and change events.
	SourceName = "youtube"

	platform    = "YouTube"
	contentType = "video"
	idPrefix    = "youtube:"
)

// Client implements domain.VideoSource.
type Client struct {
	svc        *yt.Service
	channelID  string
	maxResults int64
	timeout    time.Duration
	cb         *gobreaker.CircuitBreaker[[]domain.Post]
	logger     *zap.Logger
}

// New creates a YouTube client authenticated with an API key.
func New(ctx context.Context, cfg config.YouTubeConfig, logger *zap.Logger) (*Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	return &Client{
		svc:        svc,
		channelID:  cfg.ChannelID,
		maxResults: maxResults,
		timeout:    cfg.Timeout,
		cb:         provider.NewCircuitBreaker[[]domain.Post](SourceName, cfg.CB, logger),
		logger:     logger,
	}, nil
}

// Name returns the source identifier.
func (c *Client) Name() string {
	return SourceName
}

// FetchPosts lists the channel's latest videos and their statistics.
func (c *Client) FetchPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := c.cb.Execute(func() ([]domain.Post, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		c.logger.Warn("youtube fetch failed",
			zap.Error(err),
			zap.String("channel", c.channelID),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching from youtube: %w", err)
	}

	c.logger.Info("youtube fetch completed",
		zap.String("channel", c.channelID),
		zap.Int("count", len(posts)),
	)

	return posts, nil
}

func (c *Client) fetch(ctx context.Context) ([]domain.Post, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	search, err := c.svc.Search.List([]string{"id"}).
		ChannelId(c.channelID).
		Order("date").
		Type("video").
		MaxResults(c.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("searching channel %s: %w", c.channelID, err)
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return []domain.Post{}, nil
	}

	videos, err := c.svc.Videos.List([]string{"snippet", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing video statistics: %w", err)
	}

	posts := make([]domain.Post, 0, len(videos.Items))
	for _, v := range videos.Items {
		posts = append(posts, toPost(v))
	}

	return posts, nil
}

// toPost maps a video to a post. YouTube has no share counter, so shares stay 0.
func toPost(v *yt.Video) domain.Post {
	p := domain.Post{
		ID:          idPrefix + v.Id,
		Platform:    platform,
		ContentType: contentType,
	}
	if v.Snippet != nil {
		p.Title = v.Snippet.Title
		if ts, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			p.CreatedAt = ts.UTC()
		}
	}
	if v.Statistics != nil {
		p.Likes = int64(v.Statistics.LikeCount)
		p.Comments = int64(v.Statistics.CommentCount)
	}

	return p.Normalize()
}
