package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cinedex/internal/catalog"
	"cinedex/internal/identity"
	"cinedex/internal/logging"
	"cinedex/internal/matching"
	"cinedex/internal/scrape"
)

// DefaultCheckpointEvery is the record count between checkpoints.
const DefaultCheckpointEvery = 50

// Saver persists the store. storefile.File satisfies it.
type Saver interface {
	Save(store *catalog.Store) error
}

// Options tune a run.
type Options struct {
	MinTier         matching.Tier
	ForceRetry      bool
	DryRun          bool
	CheckpointEvery int
}

// Pipeline ties resolution, merging and persistence together.
type Pipeline struct {
	resolver *identity.Resolver
	engine   *catalog.Engine
	saver    Saver
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the clock used for run durations.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New builds a pipeline. saver may be nil only for dry runs.
func New(resolver *identity.Resolver, engine *catalog.Engine, saver Saver, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		engine:   engine,
		saver:    saver,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "ingest")
	return p
}

type run struct {
	p        *Pipeline
	ctx      context.Context
	store    *catalog.Store
	opts     Options
	index    map[catalog.SourceKey]string
	summary  Summary
	logger   *slog.Logger
	sampler  *logging.ProgressSampler
	started  time.Time
	sinceCkp int
}

func (p *Pipeline) begin(ctx context.Context, store *catalog.Store, operation string, opts Options) *run {
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = DefaultCheckpointEvery
	}
	if opts.MinTier <= matching.None {
		opts.MinTier = matching.High
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	return &run{
		p:       p,
		ctx:     ctx,
		store:   store,
		opts:    opts,
		index:   store.SourceIndex(),
		summary: Summary{RunID: runID, Operation: operation, DryRun: opts.DryRun},
		logger:  logging.WithContext(ctx, p.logger),
		sampler: logging.NewProgressSampler(10),
		started: p.now(),
	}
}

// Ingest processes records in order against store.
func (p *Pipeline) Ingest(ctx context.Context, store *catalog.Store, records []scrape.Record, opts Options) (Summary, error) {
	r := p.begin(ctx, store, "ingest", opts)
	r.logger.Info("ingest started",
		logging.Int("records", len(records)),
		logging.String("min_confidence", r.opts.MinTier.String()),
		logging.Bool("dry_run", r.opts.DryRun),
	)
	for i, record := range records {
		if err := r.ctx.Err(); err != nil {
			return r.interrupted(err)
		}
		if err := r.ingestRecord(record); err != nil {
			if r.ctx.Err() != nil {
				return r.interrupted(r.ctx.Err())
			}
			return r.finish(err)
		}
		if err := r.advance(i+1, len(records)); err != nil {
			return r.finish(err)
		}
	}
	return r.finish(nil)
}

// Enrich resolves entries still under temporary keys and migrates the
// matches to their IMDB ids.
func (p *Pipeline) Enrich(ctx context.Context, store *catalog.Store, opts Options) (Summary, error) {
	r := p.begin(ctx, store, "enrich", opts)
	var keys []string
	for _, key := range store.Keys() {
		if catalog.IsTemporaryKey(key) {
			keys = append(keys, key)
		}
	}
	r.logger.Info("enrich started",
		logging.Int("temporary_entries", len(keys)),
		logging.String("min_confidence", r.opts.MinTier.String()),
		logging.Bool("dry_run", r.opts.DryRun),
	)
	for i, key := range keys {
		if err := r.ctx.Err(); err != nil {
			return r.interrupted(err)
		}
		if err := r.enrichEntry(key); err != nil {
			if r.ctx.Err() != nil {
				return r.interrupted(r.ctx.Err())
			}
			return r.finish(err)
		}
		if err := r.advance(i+1, len(keys)); err != nil {
			return r.finish(err)
		}
	}
	return r.finish(nil)
}

// errInterrupted marks a record abandoned because the context ended.
var errInterrupted = errors.New("record interrupted")

func (r *run) ingestRecord(record scrape.Record) error {
	r.summary.Processed++
	source := record.Key()
	logger := r.logger.With(logging.String(logging.FieldProvider, string(source.Kind)))
	if record.Source == nil || source.ID == "" {
		r.summary.fail("(unknown)", "record has no source id")
		return nil
	}
	incoming := &catalog.Entry{
		Title:   record.Title(),
		Year:    record.Year(),
		Sources: catalog.Sources{record.Source},
	}
	if incoming.Title == "" {
		r.summary.fail(catalog.TemporaryKey(source), identity.ReasonBlankTitle)
		logger.Warn("record skipped", logging.String("source", source.String()), logging.String("reason", identity.ReasonBlankTitle))
		return nil
	}

	if key, ok := r.index[source]; ok {
		if _, _, err := r.p.engine.Upsert(r.store, key, incoming); err != nil {
			return err
		}
		r.summary.Updated++
		if !catalog.IsTemporaryKey(key) {
			return nil
		}
		res := r.resolve(key, record.Title(), record.Channel, record.Year())
		return r.apply(key, res)
	}

	tempKey := catalog.FreeTemporaryKey(r.store, source, "")
	res := r.resolve(tempKey, record.Title(), record.Channel, record.Year())
	if errors.Is(res.Err, errInterrupted) {
		r.summary.Processed--
		return res.Err
	}
	key := tempKey
	if res.Outcome == identity.OutcomeMatched {
		key = res.IMDBID()
		if existing, ok := r.store.Get(key); !ok || !existing.Verified {
			incoming.Metadata = res.Metadata
		}
	}
	entry, created, err := r.p.engine.Upsert(r.store, key, incoming)
	if err != nil {
		return err
	}
	if created {
		r.summary.Created++
	} else {
		r.summary.Updated++
	}
	r.reindex(entry)
	r.count(key, res)
	return nil
}

func (r *run) enrichEntry(key string) error {
	entry, ok := r.store.Get(key)
	if !ok {
		return nil
	}
	r.summary.Processed++
	if id := entry.CanonicalID(); id != "" {
		// metadata was attached earlier, only the key is stale
		return r.migrate(key, id, nil)
	}
	src, ok := entry.TemporarySource()
	if !ok && len(entry.Sources) > 0 {
		src = entry.Sources[0]
	}
	title := entry.ExtractedTitle
	channel := ""
	year := entry.Year
	if src != nil {
		if title == "" {
			title = src.Common().Title
		}
		channel = channelOf(src)
		if year == 0 {
			year = src.Common().Year
		}
	}
	if title == "" {
		title = entry.Title
	}
	res := r.resolve(key, title, channel, year)
	return r.apply(key, res)
}

// apply counts a resolution of an existing temporary entry and migrates it
// on a match.
func (r *run) apply(key string, res identity.Resolution) error {
	if errors.Is(res.Err, errInterrupted) {
		r.summary.Processed--
		return res.Err
	}
	r.count(key, res)
	if res.Outcome != identity.OutcomeMatched {
		return nil
	}
	return r.migrate(key, res.IMDBID(), res.Metadata)
}

func (r *run) migrate(key, id string, metadata *catalog.Metadata) error {
	destination, exists := r.store.Get(id)
	curated := exists && destination.Verified
	if _, err := r.p.engine.MigrateKey(r.store, key, id); err != nil {
		return fmt.Errorf("migrate %s to %s: %w", key, id, err)
	}
	if metadata != nil && !curated {
		if _, _, err := r.p.engine.Upsert(r.store, id, &catalog.Entry{Metadata: metadata}); err != nil {
			return err
		}
	}
	if catalog.IsCanonicalKey(id) {
		r.p.resolver.Attempts().Remove(key)
	} else {
		r.p.resolver.Attempts().Rekey(key, id)
	}
	entry, _ := r.store.Get(id)
	r.reindex(entry)
	r.summary.Migrated++
	r.logger.Info("entry migrated to canonical key",
		logging.String(logging.FieldEntryKey, id),
		logging.String("from_key", key),
		logging.Bool("into_existing", exists),
	)
	return nil
}

func (r *run) resolve(key, title, channel string, year int) identity.Resolution {
	res := r.p.resolver.Resolve(r.ctx, identity.Request{
		Key:     key,
		Title:   title,
		Channel: channel,
		Year:    year,
	}, identity.Options{MinTier: r.opts.MinTier, ForceRetry: r.opts.ForceRetry})
	if res.Outcome == identity.OutcomeFailed && r.ctx.Err() != nil {
		res.Err = fmt.Errorf("%w: %w", errInterrupted, res.Err)
	}
	return res
}

func (r *run) count(key string, res identity.Resolution) {
	switch res.Outcome {
	case identity.OutcomeMatched:
		r.summary.Matched++
	case identity.OutcomeUnmatched:
		r.summary.Unmatched++
	case identity.OutcomeSkipped:
		r.summary.Skipped++
	case identity.OutcomeFailed:
		r.summary.fail(key, res.Reason)
	}
}

func (r *run) reindex(entry *catalog.Entry) {
	if entry == nil {
		return
	}
	for _, src := range entry.Sources {
		r.index[src.Key()] = entry.Key
	}
}

func (r *run) advance(done, total int) error {
	if r.sampler.ShouldLog(done, total, r.summary.Operation) {
		r.logger.Info("progress",
			logging.Int("done", done),
			logging.Int("total", total),
			logging.Int("matched", r.summary.Matched),
			logging.Int("failed", r.summary.Failed),
		)
	}
	r.sinceCkp++
	if r.sinceCkp < r.opts.CheckpointEvery {
		return nil
	}
	return r.checkpoint()
}

// checkpoint saves the store and the attempts file. Dry runs save nothing.
func (r *run) checkpoint() error {
	r.sinceCkp = 0
	if r.opts.DryRun {
		return nil
	}
	if r.p.saver == nil {
		return errors.New("checkpoint: no store saver configured")
	}
	if err := r.p.saver.Save(r.store); err != nil {
		return fmt.Errorf("checkpoint store: %w", err)
	}
	attempts := r.p.resolver.Attempts()
	if attempts.Path() != "" && attempts.Changed() {
		if err := attempts.Save(); err != nil {
			return fmt.Errorf("checkpoint attempts: %w", err)
		}
	}
	r.summary.Checkpoints++
	r.logger.Debug("checkpoint written", logging.Int("processed", r.summary.Processed))
	return nil
}

func (r *run) interrupted(cause error) (Summary, error) {
	logging.WarnWithContext(r.logger, "run interrupted", "run_interrupted",
		logging.Int("processed", r.summary.Processed),
		logging.String(logging.FieldImpact, "remaining records left for the next run"),
	)
	if err := r.checkpoint(); err != nil {
		return r.done(), errors.Join(cause, err)
	}
	return r.done(), cause
}

func (r *run) finish(err error) (Summary, error) {
	if err != nil {
		logging.ErrorWithContext(r.logger, "run aborted", "run_aborted", logging.Error(err))
		return r.done(), err
	}
	if err := r.checkpoint(); err != nil {
		return r.done(), err
	}
	s := r.done()
	r.logger.Info("run finished",
		logging.Int("processed", s.Processed),
		logging.Int("matched", s.Matched),
		logging.Int("unmatched", s.Unmatched),
		logging.Int("skipped", s.Skipped),
		logging.Int("failed", s.Failed),
		logging.Int("created", s.Created),
		logging.Int("updated", s.Updated),
		logging.Int("migrated", s.Migrated),
		logging.Duration("duration", s.Duration),
	)
	return s, nil
}

func (r *run) done() Summary {
	r.summary.Duration = r.p.now().Sub(r.started)
	return r.summary
}

func channelOf(src catalog.SourceRecord) string {
	switch s := src.(type) {
	case *catalog.ArchiveSource:
		return s.Collection
	case *catalog.YouTubeSource:
		return s.ChannelName
	default:
		return ""
	}
}
