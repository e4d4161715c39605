package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"cinedex/internal/catalog"
	"cinedex/internal/omdbcache"
)

type catalogStats struct {
	Entries      int                  `json:"entries"`
	Canonical    int                  `json:"canonical"`
	Temporary    int                  `json:"temporary"`
	WithMetadata int                  `json:"withMetadata"`
	Verified     int                  `json:"verified"`
	Sources      map[catalog.Kind]int `json:"sources"`
	Confidence   map[string]int       `json:"confidence"`
	Suppressed   int                  `json:"suppressed"`
	Cache        *omdbcache.Stats     `json:"cache,omitempty"`
}

func collectStats(store *catalog.Store) catalogStats {
	stats := catalogStats{
		Sources:    make(map[catalog.Kind]int),
		Confidence: make(map[string]int),
	}
	for key, entry := range store.All() {
		stats.Entries++
		switch {
		case catalog.IsCanonicalKey(key):
			stats.Canonical++
		case catalog.IsTemporaryKey(key):
			stats.Temporary++
		}
		if entry.Metadata != nil {
			stats.WithMetadata++
			if c := entry.Metadata.Confidence; c != "" {
				stats.Confidence[c]++
			}
		}
		if entry.Verified {
			stats.Verified++
		}
		for _, src := range entry.Sources {
			stats.Sources[src.Key().Kind]++
		}
	}
	return stats
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize catalog contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace(false)
			if err != nil {
				return err
			}
			defer ws.Close()

			stats := collectStats(ws.store)
			stats.Suppressed = ws.attempts.Len()
			if ws.cfg.OMDB.CacheEnabled && ws.cfg.OMDB.APIKey != "" {
				api, closeAPI, err := openOMDB(ws.cfg, ws.logger)
				if err != nil {
					return err
				}
				defer closeAPI()
				if cache, ok := api.(*omdbcache.Cache); ok {
					cacheStats, err := cache.Stats(cmd.Context())
					if err != nil {
						return err
					}
					stats.Cache = &cacheStats
				}
			}
			return printStats(cmd, ctx, stats)
		},
	}
}

func printStats(cmd *cobra.Command, ctx *commandContext, stats catalogStats) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, stats)
	}
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"entries", strconv.Itoa(stats.Entries)},
		{"canonical", strconv.Itoa(stats.Canonical)},
		{"temporary", strconv.Itoa(stats.Temporary)},
		{"with metadata", strconv.Itoa(stats.WithMetadata)},
		{"verified", strconv.Itoa(stats.Verified)},
		{"suppressed", strconv.Itoa(stats.Suppressed)},
	}
	for _, kind := range []catalog.Kind{catalog.KindArchive, catalog.KindYouTube} {
		rows = append(rows, []string{"sources: " + string(kind), strconv.Itoa(stats.Sources[kind])})
	}
	confidences := make([]string, 0, len(stats.Confidence))
	for name := range stats.Confidence {
		confidences = append(confidences, name)
	}
	sort.Strings(confidences)
	for _, name := range confidences {
		rows = append(rows, []string{"confidence: " + name, strconv.Itoa(stats.Confidence[name])})
	}
	if stats.Cache != nil {
		rows = append(rows,
			[]string{"omdb cache searches", strconv.Itoa(stats.Cache.Searches)},
			[]string{"omdb cache details", strconv.Itoa(stats.Cache.Details)},
			[]string{"omdb cache expired", strconv.Itoa(stats.Cache.Expired)},
		)
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}, shouldColorize(out)))
	return nil
}
