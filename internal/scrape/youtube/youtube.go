// Package youtube scrapes full-length movie uploads from YouTube channels via
// the Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"

	"cinedex/internal/catalog"
	"cinedex/internal/logging"
	"cinedex/internal/scrape"
)

// maxBatch is the largest id list the videos endpoint accepts.
const maxBatch = 50

// ErrChannelNotFound reports a channel id or handle YouTube does not know.
var ErrChannelNotFound = errors.New("youtube channel not found")

// Client lists uploads of configured channels.
type Client struct {
	apiKey      string
	baseURL     string
	channels    []string
	minDuration time.Duration
	fetcher     *scrape.Fetcher
	now         func() time.Time
	logger      *slog.Logger
}

var _ scrape.Scraper = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *scrape.Fetcher) Option {
	return func(c *Client) {
		if f != nil {
			c.fetcher = f
		}
	}
}

// WithMinDuration drops videos shorter than d.
func WithMinDuration(d time.Duration) Option {
	return func(c *Client) {
		c.minDuration = d
	}
}

// WithClock sets the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a YouTube scraper. Channels are channel ids (UC...) or
// @handles.
func New(apiKey, baseURL string, channels []string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("youtube base url required")
	}
	if len(channels) == 0 {
		return nil, errors.New("at least one youtube channel required")
	}
	c := &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		channels: channels,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = scrape.NewFetcher("youtube", scrape.WithLogger(c.logger))
	}
	c.logger = logging.NewComponentLogger(c.logger, "youtube")
	return c, nil
}

func (c *Client) Kind() catalog.Kind { return catalog.KindYouTube }

type channelResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration   string `json:"duration"`
			Definition string `json:"definition"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount any `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type channelInfo struct {
	id      string
	name    string
	uploads string
}

// Scrape lists each channel's uploads newest first, keeping videos at least
// the minimum duration long.
func (c *Client) Scrape(ctx context.Context, limit int) ([]scrape.Record, error) {
	var out []scrape.Record
	for _, channel := range c.channels {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(out)
			if remaining <= 0 {
				break
			}
		}
		info, err := c.resolveChannel(ctx, channel)
		if err != nil {
			return out, err
		}
		records, err := c.scrapeUploads(ctx, info, remaining)
		out = append(out, records...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (c *Client) resolveChannel(ctx context.Context, channel string) (channelInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	if handle, ok := strings.CutPrefix(channel, "@"); ok {
		params.Set("forHandle", handle)
	} else {
		params.Set("id", channel)
	}
	var resp channelResponse
	if err := c.get(ctx, "channels", params, &resp); err != nil {
		return channelInfo{}, fmt.Errorf("resolve channel %s: %w", channel, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return channelInfo{}, fmt.Errorf("%w: %s", ErrChannelNotFound, channel)
	}
	item := resp.Items[0]
	return channelInfo{
		id:      item.ID,
		name:    item.Snippet.Title,
		uploads: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

func (c *Client) scrapeUploads(ctx context.Context, info channelInfo, limit int) ([]scrape.Record, error) {
	var out []scrape.Record
	dropped := 0
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("part", "snippet,contentDetails")
		params.Set("playlistId", info.uploads)
		params.Set("maxResults", "50")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var page playlistResponse
		if err := c.get(ctx, "playlistItems", params, &page); err != nil {
			return out, fmt.Errorf("list uploads for %s: %w", info.name, err)
		}

		pending := make([]*catalog.YouTubeSource, 0, len(page.Items))
		for _, item := range page.Items {
			id := strings.TrimSpace(item.ContentDetails.VideoID)
			if id == "" {
				continue
			}
			published := item.ContentDetails.VideoPublishedAt
			if published == "" {
				published = item.Snippet.PublishedAt
			}
			src := &catalog.YouTubeSource{
				SourceCommon: catalog.SourceCommon{
					ID:          id,
					Title:       strings.TrimSpace(item.Snippet.Title),
					Description: strings.TrimSpace(item.Snippet.Description),
					AddedAt:     c.now().UTC(),
				},
				ChannelID:   info.id,
				ChannelName: info.name,
			}
			if ts, err := time.Parse(time.RFC3339, published); err == nil {
				src.PublishedAt = ts.UTC()
			}
			pending = append(pending, src)
		}

		if err := c.fillDetails(ctx, pending); err != nil {
			return out, err
		}
		for _, src := range pending {
			if time.Duration(src.DurationSeconds)*time.Second < c.minDuration {
				dropped++
				continue
			}
			out = append(out, scrape.Record{Source: src, Channel: info.name})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}

		if page.NextPageToken == "" || len(page.Items) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}
	c.logger.Info("youtube channel scraped",
		logging.String("channel", info.name),
		logging.Int("records", len(out)),
		logging.Int("dropped_short", dropped),
	)
	return out, nil
}

// fillDetails sets duration, view count and quality in batches of at most
// maxBatch ids.
func (c *Client) fillDetails(ctx context.Context, sources []*catalog.YouTubeSource) error {
	byID := make(map[string]*catalog.YouTubeSource, len(sources))
	for _, src := range sources {
		byID[src.ID] = src
	}
	for start := 0; start < len(sources); start += maxBatch {
		end := min(start+maxBatch, len(sources))
		ids := make([]string, 0, end-start)
		for _, src := range sources[start:end] {
			ids = append(ids, src.ID)
		}
		params := url.Values{}
		params.Set("part", "contentDetails,statistics")
		params.Set("id", strings.Join(ids, ","))
		var resp videosResponse
		if err := c.get(ctx, "videos", params, &resp); err != nil {
			return fmt.Errorf("fetch video details: %w", err)
		}
		for _, item := range resp.Items {
			src, ok := byID[item.ID]
			if !ok {
				continue
			}
			if d, err := ParseDuration(item.ContentDetails.Duration); err == nil {
				src.DurationSeconds = int(d / time.Second)
			}
			src.ViewCount = cast.ToInt64(item.Statistics.ViewCount)
			src.Quality = strings.ToUpper(strings.TrimSpace(item.ContentDetails.Definition))
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	return c.fetcher.GetJSON(ctx, c.baseURL+"/"+resource+"?"+params.Encode(), out)
}
