package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOMDB()
	c.normalizeArchive()
	c.normalizeYouTube()
	c.normalizeResolution()
	c.normalizeDedup()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StoreFile) == "" {
		c.Paths.StoreFile = defaultStoreFile
	}
	if c.Paths.StoreFile, err = expandPath(c.Paths.StoreFile); err != nil {
		return fmt.Errorf("paths.store_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.AttemptsFile) == "" {
		c.Paths.AttemptsFile = defaultAttempts
	}
	if c.Paths.AttemptsFile, err = expandPath(c.Paths.AttemptsFile); err != nil {
		return fmt.Errorf("paths.attempts_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDB) == "" {
		c.Paths.CacheDB = defaultCacheDB
	}
	if c.Paths.CacheDB, err = expandPath(c.Paths.CacheDB); err != nil {
		return fmt.Errorf("paths.cache_db: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOMDB() {
	c.OMDB.APIKey = strings.TrimSpace(c.OMDB.APIKey)
	if c.OMDB.APIKey == "" {
		if value, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			c.OMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.OMDB.BaseURL = strings.TrimSpace(c.OMDB.BaseURL)
	if c.OMDB.BaseURL == "" {
		c.OMDB.BaseURL = defaultOMDBBaseURL
	}
	if c.OMDB.MinIntervalMillis <= 0 {
		c.OMDB.MinIntervalMillis = defaultOMDBMinIntervalMillis
	}
	if c.OMDB.RateLimitDelaySeconds <= 0 {
		c.OMDB.RateLimitDelaySeconds = defaultOMDBRateLimitDelay
	}
	if c.OMDB.TimeoutSeconds <= 0 {
		c.OMDB.TimeoutSeconds = defaultOMDBTimeoutSeconds
	}
	if c.OMDB.CacheTTLHours <= 0 {
		c.OMDB.CacheTTLHours = defaultOMDBCacheTTLHours
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Archive.BaseURL), "/")
	if c.Archive.BaseURL == "" {
		c.Archive.BaseURL = defaultArchiveBaseURL
	}
	c.Archive.Collections = dedupeStrings(c.Archive.Collections, strings.ToLower)
	if c.Archive.PageSize <= 0 {
		c.Archive.PageSize = defaultArchivePageSize
	}
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	c.YouTube.Channels = dedupeStrings(c.YouTube.Channels, nil)
	if c.YouTube.MinDurationMinutes < 0 {
		c.YouTube.MinDurationMinutes = 0
	}
}

func (c *Config) normalizeResolution() {
	c.Resolution.MinConfidence = strings.ToLower(strings.TrimSpace(c.Resolution.MinConfidence))
	if c.Resolution.MinConfidence == "" {
		c.Resolution.MinConfidence = defaultMinConfidence
	}
	if c.Resolution.CheckpointEvery <= 0 {
		c.Resolution.CheckpointEvery = defaultCheckpointEvery
	}
}

func (c *Config) normalizeDedup() {
	if c.Dedup.Threshold == 0 {
		c.Dedup.Threshold = defaultDedupThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func dedupeStrings(values []string, transform func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if transform != nil {
			value = transform(value)
		}
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
