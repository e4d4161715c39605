// Package archive scrapes movie items from Archive.org collections through
// the cursored scrape API.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"cinedex/internal/catalog"
	"cinedex/internal/language"
	"cinedex/internal/logging"
	"cinedex/internal/scrape"
	"cinedex/internal/titles"
)

const (
	scrapePath = "/services/search/v1/scrape"
	fields     = "identifier,title,date,year,language,description"
	// minPageSize is the smallest count the scrape API accepts.
	minPageSize = 100
)

// Client lists items from one or more collections.
type Client struct {
	baseURL     string
	collections []string
	pageSize    int
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

// WithPageSize sets the scrape page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
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

// New creates an Archive.org scraper for the given collections.
func New(baseURL string, collections []string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("archive base url required")
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("at least one archive collection required")
	}
	c := &Client{
		baseURL:     baseURL,
		collections: collections,
		pageSize:    1000,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pageSize = max(c.pageSize, minPageSize)
	if c.fetcher == nil {
		c.fetcher = scrape.NewFetcher("archive", scrape.WithLogger(c.logger))
	}
	c.logger = logging.NewComponentLogger(c.logger, "archive")
	return c, nil
}

func (c *Client) Kind() catalog.Kind { return catalog.KindArchive }

type scrapeResponse struct {
	Items  []map[string]any `json:"items"`
	Count  int              `json:"count"`
	Cursor string           `json:"cursor"`
	Total  int              `json:"total"`
}

// Scrape walks every configured collection in order, following the cursor
// until the API stops returning one or limit records were collected.
func (c *Client) Scrape(ctx context.Context, limit int) ([]scrape.Record, error) {
	var out []scrape.Record
	seen := make(map[string]bool)
	for _, collection := range c.collections {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(out)
			if remaining <= 0 {
				break
			}
		}
		records, err := c.scrapeCollection(ctx, collection, remaining, seen)
		out = append(out, records...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (c *Client) scrapeCollection(ctx context.Context, collection string, limit int, seen map[string]bool) ([]scrape.Record, error) {
	var out []scrape.Record
	cursor := ""
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("collection:(%s) AND mediatype:(movies)", collection))
		params.Set("fields", fields)
		params.Set("count", strconv.Itoa(c.pageSize))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp scrapeResponse
		if err := c.fetcher.GetJSON(ctx, c.baseURL+scrapePath+"?"+params.Encode(), &resp); err != nil {
			return out, fmt.Errorf("scrape collection %s page %d: %w", collection, page, err)
		}
		for _, item := range resp.Items {
			record, ok := c.toRecord(collection, item)
			if !ok || seen[record.Key().ID] {
				continue
			}
			seen[record.Key().ID] = true
			out = append(out, record)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
		c.logger.Debug("archive page scraped",
			logging.String("collection", collection),
			logging.Int("page", page),
			logging.Int("items", len(resp.Items)),
			logging.Int("total", resp.Total),
		)
		if resp.Cursor == "" || len(resp.Items) == 0 {
			break
		}
		cursor = resp.Cursor
	}
	c.logger.Info("archive collection scraped",
		logging.String("collection", collection),
		logging.Int("records", len(out)),
	)
	return out, nil
}

func (c *Client) toRecord(collection string, item map[string]any) (scrape.Record, bool) {
	id := firstString(item["identifier"])
	if id == "" {
		return scrape.Record{}, false
	}
	date := firstString(item["date"])
	src := &catalog.ArchiveSource{
		SourceCommon: catalog.SourceCommon{
			ID:          id,
			Title:       firstString(item["title"]),
			Year:        itemYear(item["year"], date),
			Description: joinStrings(item["description"]),
			AddedAt:     c.now().UTC(),
		},
		Collection: collection,
		Date:       date,
		Language:   itemLanguages(item["language"]),
	}
	return scrape.Record{Source: src, Channel: collection}, true
}

// firstString coerces a scalar or the first element of a list to a string.
func firstString(v any) string {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	return strings.TrimSpace(cast.ToString(v))
}

func joinStrings(v any) string {
	list, ok := v.([]any)
	if !ok {
		return strings.TrimSpace(cast.ToString(v))
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(cast.ToString(item)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// itemLanguages normalizes the language field to comma separated ISO 639-1
// codes.
func itemLanguages(v any) string {
	var values []string
	if list, ok := v.([]any); ok {
		for _, item := range list {
			values = append(values, cast.ToString(item))
		}
	} else {
		values = []string{cast.ToString(v)}
	}
	return strings.Join(language.NormalizeList(values), ",")
}

// itemYear reads the year field, falling back to the leading year of date.
func itemYear(v any, date string) int {
	if year, err := cast.ToIntE(firstString(v)); err == nil && year >= 1880 && year <= 2100 {
		return year
	}
	if year, ok := titles.ParseYear(date); ok {
		return year
	}
	return 0
}
