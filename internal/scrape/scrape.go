// Package scrape defines the record stream shared by the provider scrapers
// and the paced JSON fetcher they use.
package scrape

import (
	"context"

	"cinedex/internal/catalog"
)

// Record is one scraped observation plus the context identity resolution
// needs.
type Record struct {
	Source catalog.SourceRecord
	// Channel is the YouTube channel name or Archive.org collection. Title
	// cleanup rules are keyed by it.
	Channel string
}

// Key returns the source identity.
func (r Record) Key() catalog.SourceKey { return r.Source.Key() }

// Title returns the title as scraped.
func (r Record) Title() string { return r.Source.Common().Title }

// Year returns the provider year hint, 0 when unknown.
func (r Record) Year() int { return r.Source.Common().Year }

// Scraper lists records from one provider. A limit of 0 means no limit.
type Scraper interface {
	Kind() catalog.Kind
	Scrape(ctx context.Context, limit int) ([]Record, error)
}
