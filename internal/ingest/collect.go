package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"cinedex/internal/scrape"
)

// Collect runs every scraper concurrently and concatenates their records in
// scraper order. The first failure cancels the others.
func Collect(ctx context.Context, scrapers []scrape.Scraper, limit int) ([]scrape.Record, error) {
	results := make([][]scrape.Record, len(scrapers))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scrapers {
		g.Go(func() error {
			records, err := s.Scrape(gctx, limit)
			if err != nil {
				return fmt.Errorf("scrape %s: %w", s.Kind(), err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []scrape.Record
	for _, records := range results {
		out = append(out, records...)
	}
	return out, nil
}
