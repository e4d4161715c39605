package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinedex/internal/catalog"
	"cinedex/internal/logging"
	"cinedex/internal/matching"
	"cinedex/internal/omdb"
	"cinedex/internal/textutil"
	"cinedex/internal/titles"
)

// Outcome classifies a resolution.
type Outcome int

const (
	OutcomeMatched Outcome = iota
	OutcomeUnmatched
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Skip reasons.
const (
	ReasonBlankTitle = "blank title"
	ReasonSuppressed = "previously failed to match"
)

// Request describes one record to resolve.
type Request struct {
	// Key identifies the record in the attempts log.
	Key string
	// Title is the raw scraped title.
	Title string
	// Channel is the YouTube channel name or Archive.org collection, used to
	// pick channel-specific title rules.
	Channel string
	// Year is the provider-supplied year hint; 0 when unknown.
	Year int
}

// Options tune a single resolution.
type Options struct {
	MinTier    matching.Tier
	ForceRetry bool
}

// Resolution is the result of Resolve.
type Resolution struct {
	Outcome  Outcome
	Match    matching.Result
	Metadata *catalog.Metadata
	Queries  []Query
	Reason   string
	Err      error
}

// IMDBID returns the matched id, empty unless matched.
func (r Resolution) IMDBID() string {
	if r.Outcome != OutcomeMatched {
		return ""
	}
	return r.Match.IMDBID
}

// Resolver turns scraped titles into IMDB ids.
type Resolver struct {
	api      omdb.API
	attempts *AttemptLog
	logger   *slog.Logger
	now      func() time.Time
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the decision logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock sets the attempt timestamp source.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver builds a resolver over api. attempts may be nil to disable
// suppression.
func NewResolver(api omdb.API, attempts *AttemptLog, opts ...ResolverOption) *Resolver {
	r := &Resolver{api: api, attempts: attempts, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	if r.attempts == nil {
		r.attempts = NewAttemptLog("")
	}
	return r
}

// Attempts returns the suppression log.
func (r *Resolver) Attempts() *AttemptLog { return r.attempts }

// Resolve runs normalize, search, score and, when confident, fetches details.
func (r *Resolver) Resolve(ctx context.Context, req Request, opts Options) Resolution {
	logger := r.logger.With(logging.String(logging.FieldEntryKey, req.Key))
	if strings.TrimSpace(req.Title) == "" {
		return Resolution{Outcome: OutcomeSkipped, Reason: ReasonBlankTitle}
	}
	if !opts.ForceRetry && req.Key != "" && r.attempts.Suppressed(req.Key) {
		logger.Debug("resolution suppressed",
			logging.Args(logging.DecisionAttrs("resolution", "skipped", ReasonSuppressed)...)...)
		return Resolution{Outcome: OutcomeSkipped, Reason: ReasonSuppressed}
	}
	if opts.MinTier <= matching.None {
		opts.MinTier = matching.Low
	}

	query := titles.NormalizeForChannel(req.Title, req.Channel)
	year := req.Year
	titleYear := false
	if year <= 0 {
		if embedded, ok := titles.ExtractYear(req.Title); ok {
			year, titleYear = embedded, true
		}
	}

	res := Resolution{}
	best, err := r.search(ctx, &res, query, year)
	if err != nil {
		return r.failed(logger, res, err)
	}

	if !best.Matched(opts.MinTier) {
		// A year read from the title may be wrong; the fallback drops it.
		fallback, fallbackYear := titles.Light(req.Title, req.Channel), year
		if titleYear {
			fallbackYear = 0
		}
		if fallbackYear != year || textutil.Fold(fallback) != textutil.Fold(query) {
			alt, err := r.search(ctx, &res, fallback, fallbackYear)
			if err != nil {
				return r.failed(logger, res, err)
			}
			if alt.Candidate != nil && (best.Candidate == nil || alt.Tier > best.Tier) {
				best = alt
			}
		}
	}
	res.Match = best

	logger.Info("match scored",
		logging.String("query", query),
		logging.Int("year", year),
		logging.Bool("channel_rules", titles.KnownChannel(req.Channel)),
		logging.String("candidate", best.IMDBID),
		logging.String("candidate_title", best.Title),
		logging.String("tier", best.Tier.String()),
		logging.String("rule", string(best.Rule)),
		logging.String("min_tier", opts.MinTier.String()),
	)

	if !best.Matched(opts.MinTier) {
		res.Reason = unmatchedReason(best, opts.MinTier)
		return r.unmatched(logger, req, res)
	}

	details, err := r.api.FetchDetails(ctx, best.IMDBID)
	if errors.Is(err, omdb.ErrNotFound) {
		res.Reason = fmt.Sprintf("details for %s not found", best.IMDBID)
		return r.unmatched(logger, req, res)
	}
	if err != nil {
		return r.failed(logger, res, err)
	}

	res.Outcome = OutcomeMatched
	res.Metadata = MetadataFromDetails(details, best.Tier.String())
	if res.Metadata.IMDBID == "" {
		res.Metadata.IMDBID = best.IMDBID
	}
	if req.Key != "" && r.attempts.Remove(req.Key) {
		logger.Info("cleared previous failed attempt")
	}
	logger.Info("record matched",
		logging.Args(logging.DecisionAttrs("resolution", "matched", string(best.Rule))...)...)
	return res
}

func (r *Resolver) search(ctx context.Context, res *Resolution, query string, year int) (matching.Result, error) {
	if err := ctx.Err(); err != nil {
		return matching.Result{}, err
	}
	res.Queries = append(res.Queries, Query{Query: query, Year: year})
	candidates, err := r.api.Search(ctx, query, year)
	if err != nil {
		return matching.Result{}, fmt.Errorf("search %q: %w", query, err)
	}
	return matching.Best(query, year, candidates), nil
}

func (r *Resolver) failed(logger *slog.Logger, res Resolution, err error) Resolution {
	res.Outcome = OutcomeFailed
	res.Err = err
	res.Reason = err.Error()
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logging.WarnWithContext(logger, "resolution failed", "resolution_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check OMDB availability and api key"),
			logging.String(logging.FieldImpact, "record kept under its current key"),
		)
	}
	return res
}

func (r *Resolver) unmatched(logger *slog.Logger, req Request, res Resolution) Resolution {
	res.Outcome = OutcomeUnmatched
	if req.Key != "" {
		now := r.now().UTC()
		attempt := Attempt{
			Identifier:    req.Key,
			OriginalTitle: req.Title,
			Attempts:      res.Queries,
			FailedAt:      now,
			LastAttempt:   now,
			Reason:        res.Reason,
		}
		if c := res.Match.Candidate; c != nil {
			attempt.Best = &BestCandidate{
				IMDBID: res.Match.IMDBID,
				Title:  res.Match.Title,
				Year:   res.Match.Year,
				Tier:   res.Match.Tier.String(),
			}
		}
		r.attempts.Record(attempt)
	}
	logger.Info("record unmatched",
		logging.Args(logging.DecisionAttrs("resolution", "unmatched", res.Reason)...)...)
	return res
}

func unmatchedReason(best matching.Result, minimum matching.Tier) string {
	if best.Candidate == nil {
		return "no OMDB results"
	}
	return fmt.Sprintf("best candidate %s (%s) scored %s, below %s", best.IMDBID, best.Title, best.Tier, minimum)
}

// MetadataFromDetails converts an OMDB record to catalog metadata. Fields
// OMDB reports as "N/A" are left empty.
func MetadataFromDetails(d *omdb.Details, confidence string) *catalog.Metadata {
	if d == nil {
		return nil
	}
	year, _ := d.ReleaseYear()
	return &catalog.Metadata{
		IMDBID:     d.IMDBID,
		Title:      clean(d.Title),
		Year:       year,
		Rated:      clean(d.Rated),
		Released:   clean(d.Released),
		Runtime:    clean(d.Runtime),
		Genre:      clean(d.Genre),
		Director:   clean(d.Director),
		Writer:     clean(d.Writer),
		Actors:     clean(d.Actors),
		Plot:       clean(d.Plot),
		Language:   clean(d.Language),
		Country:    clean(d.Country),
		Poster:     clean(d.Poster),
		IMDBRating: clean(d.IMDBRating),
		IMDBVotes:  clean(d.IMDBVotes),
		Type:       clean(d.Type),
		Confidence: confidence,
	}
}

func clean(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}
