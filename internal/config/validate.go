package config

import (
	"errors"
	"fmt"
	"strings"
)

var confidenceNames = map[string]struct{}{
	"exact":  {},
	"high":   {},
	"medium": {},
	"low":    {},
}

// Validate ensures the configuration is usable. Credentials are checked
// separately by ValidateOMDB and ValidateYouTube so offline commands such as
// dedup and stats work without API keys.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateResolution(); err != nil {
		return err
	}
	if err := c.validateDedup(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateOMDB reports a configuration error when no OMDB key is available.
func (c *Config) ValidateOMDB() error {
	if strings.TrimSpace(c.OMDB.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("omdb.api_key is required. Set OMDB_API_KEY env var or edit %s (create with 'cinedex config init')", defaultPath)
	}
	return nil
}

// ValidateYouTube reports a configuration error when YouTube scraping cannot run.
func (c *Config) ValidateYouTube() error {
	if strings.TrimSpace(c.YouTube.APIKey) == "" {
		return errors.New("youtube.api_key is required for youtube ingest (or set YOUTUBE_API_KEY)")
	}
	if len(c.YouTube.Channels) == 0 {
		return errors.New("youtube.channels must list at least one channel id for youtube ingest")
	}
	return nil
}

// ValidateArchive reports a configuration error when Archive.org scraping cannot run.
func (c *Config) ValidateArchive() error {
	if len(c.Archive.Collections) == 0 {
		return errors.New("archive.collections must list at least one collection for archive ingest")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StoreFile) == "" {
		return errors.New("paths.store_file must be set")
	}
	if strings.TrimSpace(c.Paths.AttemptsFile) == "" {
		return errors.New("paths.attempts_file must be set")
	}
	if c.Paths.StoreFile == c.Paths.AttemptsFile {
		return errors.New("paths.attempts_file must differ from paths.store_file")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if err := ensurePositiveMap(map[string]int{
		"omdb.min_interval_ms":          c.OMDB.MinIntervalMillis,
		"omdb.rate_limit_delay_seconds": c.OMDB.RateLimitDelaySeconds,
		"omdb.timeout_seconds":          c.OMDB.TimeoutSeconds,
		"archive.page_size":             c.Archive.PageSize,
	}); err != nil {
		return err
	}
	if c.OMDB.MaxRetries < 0 {
		return errors.New("omdb.max_retries must be >= 0")
	}
	if c.Archive.PageSize < 100 || c.Archive.PageSize > 10000 {
		return errors.New("archive.page_size must be between 100 and 10000")
	}
	return nil
}

func (c *Config) validateResolution() error {
	if _, ok := confidenceNames[c.Resolution.MinConfidence]; !ok {
		return fmt.Errorf("resolution.min_confidence must be one of exact, high, medium, low (got %q)", c.Resolution.MinConfidence)
	}
	if c.Resolution.CheckpointEvery <= 0 {
		return errors.New("resolution.checkpoint_every must be positive")
	}
	return nil
}

func (c *Config) validateDedup() error {
	if c.Dedup.Threshold <= 0 || c.Dedup.Threshold > 1 {
		return errors.New("dedup.threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
