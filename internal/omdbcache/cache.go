package omdbcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cinedex/internal/logging"
	"cinedex/internal/omdb"
)

// DefaultTTL is how long cached responses are served without refetching.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is an omdb.API backed by SQLite in front of another omdb.API.
type Cache struct {
	db     *sql.DB
	path   string
	inner  omdb.API
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var _ omdb.API = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithNow replaces the time source used for freshness checks.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// Open creates or opens the cache database at path and applies migrations.
func Open(path string, inner omdb.API, opts ...Option) (*Cache, error) {
	if inner == nil {
		return nil, errors.New("omdbcache: wrapped client required")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("omdbcache: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{
		db:    db,
		path:  path,
		inner: inner,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(cache)
	}
	cache.logger = logging.NewComponentLogger(cache.logger, "omdbcache")

	if err := cache.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Search serves a fresh cached result or delegates to the wrapped client.
func (c *Cache) Search(ctx context.Context, title string, year int) ([]omdb.Candidate, error) {
	query := searchKey(title)
	if year < 0 {
		year = 0
	}
	var cached []omdb.Candidate
	if c.lookup(ctx, "SELECT payload, fetched_at FROM search_cache WHERE query = ? AND year = ?", &cached, query, year) {
		return cached, nil
	}

	results, err := c.inner.Search(ctx, title, year)
	if err != nil {
		return nil, err
	}
	c.store(ctx, "INSERT OR REPLACE INTO search_cache (query, year, payload, fetched_at) VALUES (?, ?, ?, ?)",
		results, query, year)
	return results, nil
}

// FetchDetails serves fresh cached details or delegates to the wrapped client.
func (c *Cache) FetchDetails(ctx context.Context, imdbID string) (*omdb.Details, error) {
	imdbID = strings.TrimSpace(imdbID)
	var cached omdb.Details
	if c.lookup(ctx, "SELECT payload, fetched_at FROM details_cache WHERE imdb_id = ?", &cached, imdbID) {
		return &cached, nil
	}

	details, err := c.inner.FetchDetails(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, "INSERT OR REPLACE INTO details_cache (imdb_id, payload, fetched_at) VALUES (?, ?, ?)",
		details, imdbID)
	return details, nil
}

// Stats summarizes cache contents.
type Stats struct {
	Searches int `json:"searches"`
	Details  int `json:"details"`
	Expired  int `json:"expired"`
}

// Stats counts cached rows and how many are past the TTL.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	var stats Stats
	row := c.db.QueryRowContext(ctx, `SELECT
        (SELECT COUNT(1) FROM search_cache),
        (SELECT COUNT(1) FROM details_cache),
        (SELECT COUNT(1) FROM search_cache WHERE fetched_at < ?) +
        (SELECT COUNT(1) FROM details_cache WHERE fetched_at < ?)`, cutoff, cutoff)
	if err := row.Scan(&stats.Searches, &stats.Details, &stats.Expired); err != nil {
		return Stats{}, fmt.Errorf("scan cache stats: %w", err)
	}
	return stats, nil
}

// Prune deletes rows older than the TTL and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	var total int64
	for _, table := range []string{"search_cache", "details_cache"} {
		res, err := c.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE fetched_at < ?", cutoff)
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	c.logger.Info("omdb cache pruned",
		logging.Int64("removed", total),
		logging.Duration("ttl", c.ttl),
	)
	return total, nil
}

func (c *Cache) lookup(ctx context.Context, query string, out any, args ...any) bool {
	var payload string
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		logging.WarnWithContext(c.logger, "omdb cache read failed; querying OMDB", "omdb_cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the cache database if it is corrupt"),
			logging.String(logging.FieldImpact, "extra OMDB request"),
		)
		return false
	}
	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return false
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		logging.WarnWithContext(c.logger, "omdb cache entry unreadable; querying OMDB", "omdb_cache_decode_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "extra OMDB request"),
		)
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, statement string, value any, keys ...any) {
	payload, err := json.Marshal(value)
	if err == nil {
		args := append(keys, string(payload), c.now().Unix())
		_, err = c.db.ExecContext(ctx, statement, args...)
	}
	if err != nil {
		logging.WarnWithContext(c.logger, "omdb cache write failed", "omdb_cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions for paths.cache_db"),
			logging.String(logging.FieldImpact, "response will be fetched again next run"),
		)
	}
}

func searchKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
