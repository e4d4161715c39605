package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"cinedex/internal/catalog"
	"cinedex/internal/config"
	"cinedex/internal/identity"
	"cinedex/internal/ingest"
	"cinedex/internal/logging"
	"cinedex/internal/omdb"
	"cinedex/internal/omdbcache"
	"cinedex/internal/ratelimit"
	"cinedex/internal/storefile"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.PruneOldFiles(logger, cfg.Paths.LogDir, "*.log", cfg.Logging.RetentionDays, time.Now())
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// workspace is the store and suppression log a command operates on.
type workspace struct {
	cfg      *config.Config
	logger   *slog.Logger
	file     *storefile.File
	store    *catalog.Store
	attempts *identity.AttemptLog
	unlock   func() error
}

// openWorkspace loads the store and attempts file. Writers take the store
// lock first so a concurrent run fails fast with storefile.ErrLocked.
func (c *commandContext) openWorkspace(write bool) (*workspace, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	ws := &workspace{
		cfg:    cfg,
		logger: logger,
		file:   storefile.New(cfg.Paths.StoreFile),
	}
	if write {
		unlock, err := ws.file.Lock()
		if err != nil {
			return nil, err
		}
		ws.unlock = unlock
	}
	if ws.store, err = ws.file.Load(); err != nil {
		ws.Close()
		return nil, err
	}
	if ws.attempts, err = identity.LoadAttempts(cfg.Paths.AttemptsFile); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

func (w *workspace) engine() *catalog.Engine {
	return catalog.NewEngine(catalog.WithLogger(w.logger))
}

func (w *workspace) pipeline(api omdb.API) *ingest.Pipeline {
	resolver := identity.NewResolver(api, w.attempts, identity.WithLogger(w.logger))
	return ingest.New(resolver, w.engine(), w.file, ingest.WithLogger(w.logger))
}

// save writes the store and, when it changed, the attempts file.
func (w *workspace) save() error {
	if err := w.file.Save(w.store); err != nil {
		return err
	}
	if w.attempts.Changed() {
		if err := w.attempts.Save(); err != nil {
			return err
		}
	}
	return nil
}

func (w *workspace) Close() error {
	if w.unlock == nil {
		return nil
	}
	err := w.unlock()
	w.unlock = nil
	return err
}

// openOMDB builds the OMDB client from config, wrapped in the SQLite cache
// when enabled. The returned func releases the cache.
func openOMDB(cfg *config.Config, logger *slog.Logger) (omdb.API, func() error, error) {
	if err := cfg.ValidateOMDB(); err != nil {
		return nil, nil, err
	}
	policy := ratelimit.DefaultPolicy()
	policy.MaxRetries = cfg.OMDB.MaxRetries
	clock := ratelimit.SystemClock{}
	client, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL,
		omdb.WithHTTPClient(&http.Client{Timeout: cfg.OMDBTimeout()}),
		omdb.WithClock(clock),
		omdb.WithLimiter(ratelimit.NewLimiter(cfg.OMDBMinInterval(), clock)),
		omdb.WithRateLimitDelay(cfg.OMDBRateLimitDelay()),
		omdb.WithRetryPolicy(policy),
		omdb.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.OMDB.CacheEnabled {
		return client, func() error { return nil }, nil
	}
	cache, err := omdbcache.Open(cfg.Paths.CacheDB, client,
		omdbcache.WithTTL(cfg.OMDBCacheTTL()),
		omdbcache.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache.Close, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
