package testsupport

import (
	"path/filepath"
	"testing"

	"cinedex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.OMDB.APIKey = "test"
	cfgVal.OMDB.CacheEnabled = false
	cfgVal.Paths.StoreFile = filepath.Join(base, "movies.json")
	cfgVal.Paths.AttemptsFile = filepath.Join(base, "failed-omdb-matches.json")
	cfgVal.Paths.CacheDB = filepath.Join(base, "cache", "omdb.db")
	cfgVal.Paths.LogDir = ""
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOMDB points the OMDB client at a test server.
func WithOMDB(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDB.BaseURL = baseURL
		b.cfg.OMDB.APIKey = key
		b.cfg.OMDB.MinIntervalMillis = 1
		b.cfg.OMDB.RateLimitDelaySeconds = 1
	}
}

// WithArchive points the Archive.org scraper at a test server.
func WithArchive(baseURL string, collections ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.BaseURL = baseURL
		if len(collections) > 0 {
			b.cfg.Archive.Collections = collections
		}
	}
}

// WithYouTube points the YouTube scraper at a test server.
func WithYouTube(baseURL, key string, channels ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.BaseURL = baseURL
		b.cfg.YouTube.APIKey = key
		b.cfg.YouTube.Channels = channels
	}
}

// WithOMDBCache enables the SQLite response cache under the test directory.
func WithOMDBCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDB.CacheEnabled = true
	}
}

// BaseDir returns the directory holding the generated config's files.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StoreFile)
}
