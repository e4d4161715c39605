package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cinedex/internal/config"
	"cinedex/internal/ingest"
	"cinedex/internal/matching"
	"cinedex/internal/scrape"
	"cinedex/internal/scrape/archive"
	"cinedex/internal/scrape/youtube"
)

// runFlags are shared by ingest and enrich.
type runFlags struct {
	limit           int
	dryRun          bool
	minTier         matching.Tier
	forceRetry      bool
	checkpointEvery int
}

func (f *runFlags) register(cmd *cobra.Command, withLimit bool) {
	if withLimit {
		cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum records to fetch per provider (0 for no limit)")
	}
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Resolve and merge in memory without saving")
	cmd.Flags().Var(&f.minTier, "min-confidence", "Minimum match tier: exact, high, medium or low (default from config)")
	cmd.Flags().BoolVar(&f.forceRetry, "force-retry-failed", false, "Retry records that previously failed to match")
	cmd.Flags().IntVar(&f.checkpointEvery, "checkpoint-every", 0, "Records between checkpoints (default from config)")
}

func (f *runFlags) options(cfg *config.Config) (ingest.Options, error) {
	opts := ingest.Options{
		MinTier:         f.minTier,
		ForceRetry:      f.forceRetry,
		DryRun:          f.dryRun,
		CheckpointEvery: f.checkpointEvery,
	}
	if opts.MinTier == matching.None {
		tier, err := matching.ParseTier(cfg.Resolution.MinConfidence)
		if err != nil {
			return opts, fmt.Errorf("resolution.min_confidence: %w", err)
		}
		opts.MinTier = tier
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = cfg.Resolution.CheckpointEvery
	}
	return opts, nil
}

type scraperFactory func(cfg *config.Config, logger *slog.Logger) ([]scrape.Scraper, error)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Scrape providers and merge the results into the catalog",
	}
	ingestCmd.AddCommand(newIngestProviderCommand(ctx, "archive", "Ingest Archive.org collections", archiveScrapers))
	ingestCmd.AddCommand(newIngestProviderCommand(ctx, "youtube", "Ingest YouTube channel uploads", youtubeScrapers))
	ingestCmd.AddCommand(newIngestProviderCommand(ctx, "all", "Ingest every configured provider", allScrapers))
	return ingestCmd
}

func newIngestProviderCommand(ctx *commandContext, use, short string, factory scraperFactory) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, ctx, &flags, factory)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Resolve entries still under temporary keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(cmd, ctx, &flags)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func runIngest(cmd *cobra.Command, ctx *commandContext, flags *runFlags, factory scraperFactory) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	opts, err := flags.options(cfg)
	if err != nil {
		return err
	}
	ws, err := ctx.openWorkspace(!flags.dryRun)
	if err != nil {
		return err
	}
	defer ws.Close()

	scrapers, err := factory(cfg, ws.logger)
	if err != nil {
		return err
	}
	api, closeAPI, err := openOMDB(cfg, ws.logger)
	if err != nil {
		return err
	}
	defer closeAPI()

	records, err := ingest.Collect(cmd.Context(), scrapers, flags.limit)
	if err != nil {
		return err
	}
	summary, runErr := ws.pipeline(api).Ingest(cmd.Context(), ws.store, records, opts)
	publishRun(cmd.Context(), ws, summary, runErr)
	if err := printSummary(cmd, ctx, summary); err != nil {
		return err
	}
	return runErr
}

func runEnrich(cmd *cobra.Command, ctx *commandContext, flags *runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	opts, err := flags.options(cfg)
	if err != nil {
		return err
	}
	ws, err := ctx.openWorkspace(!flags.dryRun)
	if err != nil {
		return err
	}
	defer ws.Close()

	api, closeAPI, err := openOMDB(cfg, ws.logger)
	if err != nil {
		return err
	}
	defer closeAPI()

	summary, runErr := ws.pipeline(api).Enrich(cmd.Context(), ws.store, opts)
	publishRun(cmd.Context(), ws, summary, runErr)
	if err := printSummary(cmd, ctx, summary); err != nil {
		return err
	}
	return runErr
}

func archiveScrapers(cfg *config.Config, logger *slog.Logger) ([]scrape.Scraper, error) {
	if err := cfg.ValidateArchive(); err != nil {
		return nil, err
	}
	client, err := archive.New(cfg.Archive.BaseURL, cfg.Archive.Collections,
		archive.WithPageSize(cfg.Archive.PageSize),
		archive.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return []scrape.Scraper{client}, nil
}

func youtubeScrapers(cfg *config.Config, logger *slog.Logger) ([]scrape.Scraper, error) {
	if err := cfg.ValidateYouTube(); err != nil {
		return nil, err
	}
	client, err := youtube.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL, cfg.YouTube.Channels,
		youtube.WithMinDuration(cfg.YouTubeMinDuration()),
		youtube.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return []scrape.Scraper{client}, nil
}

// allScrapers builds every provider that is configured. At least one must be.
func allScrapers(cfg *config.Config, logger *slog.Logger) ([]scrape.Scraper, error) {
	var scrapers []scrape.Scraper
	if cfg.ValidateArchive() == nil {
		s, err := archiveScrapers(cfg, logger)
		if err != nil {
			return nil, err
		}
		scrapers = append(scrapers, s...)
	}
	if cfg.ValidateYouTube() == nil {
		s, err := youtubeScrapers(cfg, logger)
		if err != nil {
			return nil, err
		}
		scrapers = append(scrapers, s...)
	}
	if len(scrapers) == 0 {
		return nil, fmt.Errorf("no providers configured: set archive.collections or youtube.api_key and youtube.channels")
	}
	return scrapers, nil
}
