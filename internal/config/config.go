package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations for the catalog and its side files.
type Paths struct {
	StoreFile    string `toml:"store_file"`
	AttemptsFile string `toml:"attempts_file"`
	CacheDB      string `toml:"cache_db"`
	LogDir       string `toml:"log_dir"`
}

// OMDB contains configuration for the Open Movie Database API.
type OMDB struct {
	APIKey                string `toml:"api_key"`
	BaseURL               string `toml:"base_url"`
	MinIntervalMillis     int    `toml:"min_interval_ms"`
	RateLimitDelaySeconds int    `toml:"rate_limit_delay_seconds"`
	MaxRetries            int    `toml:"max_retries"`
	TimeoutSeconds        int    `toml:"timeout_seconds"`
	CacheEnabled          bool   `toml:"cache_enabled"`
	CacheTTLHours         int    `toml:"cache_ttl_hours"`
}

// Archive contains configuration for the Archive.org scrape API.
type Archive struct {
	BaseURL     string   `toml:"base_url"`
	Collections []string `toml:"collections"`
	PageSize    int      `toml:"page_size"`
}

// YouTube contains configuration for the YouTube Data API.
type YouTube struct {
	APIKey             string   `toml:"api_key"`
	BaseURL            string   `toml:"base_url"`
	Channels           []string `toml:"channels"`
	MinDurationMinutes int      `toml:"min_duration_minutes"`
}

// Resolution contains identity resolution and checkpoint settings.
type Resolution struct {
	MinConfidence   string `toml:"min_confidence"`
	CheckpointEvery int    `toml:"checkpoint_every"`
}

// Dedup contains duplicate detection settings.
type Dedup struct {
	Threshold            float64 `toml:"threshold"`
	RequireYearAgreement bool    `toml:"require_year_agreement"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains ntfy settings for run announcements.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Config encapsulates all configuration values for cinedex.
//
// Configuration sections by subsystem:
//   - Paths: catalog store, suppression log, OMDB cache, log directory
//   - OMDB: identity lookups and their rate limits
//   - Archive, YouTube: provider scrape sources
//   - Resolution: minimum match tier and checkpoint cadence
//   - Dedup: title similarity threshold
//   - Logging: log format, level, and retention
//   - Notifications: ntfy topic for run outcomes
type Config struct {
	Paths         Paths         `toml:"paths"`
	OMDB          OMDB          `toml:"omdb"`
	Archive       Archive       `toml:"archive"`
	YouTube       YouTube       `toml:"youtube"`
	Resolution    Resolution    `toml:"resolution"`
	Dedup         Dedup         `toml:"dedup"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the parent directories of the store and side files.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Paths.StoreFile),
		filepath.Dir(c.Paths.AttemptsFile),
		c.Paths.LogDir,
	}
	if c.OMDB.CacheEnabled {
		dirs = append(dirs, filepath.Dir(c.Paths.CacheDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OMDBMinInterval is the minimum spacing between OMDB requests.
func (c *Config) OMDBMinInterval() time.Duration {
	return time.Duration(c.OMDB.MinIntervalMillis) * time.Millisecond
}

// OMDBRateLimitDelay is the fixed pause after an HTTP 429.
func (c *Config) OMDBRateLimitDelay() time.Duration {
	return time.Duration(c.OMDB.RateLimitDelaySeconds) * time.Second
}

// OMDBTimeout is the per-request HTTP timeout.
func (c *Config) OMDBTimeout() time.Duration {
	return time.Duration(c.OMDB.TimeoutSeconds) * time.Second
}

// OMDBCacheTTL is how long cached OMDB responses stay fresh.
func (c *Config) OMDBCacheTTL() time.Duration {
	return time.Duration(c.OMDB.CacheTTLHours) * time.Hour
}

// YouTubeMinDuration is the shortest upload kept by the YouTube scraper.
func (c *Config) YouTubeMinDuration() time.Duration {
	return time.Duration(c.YouTube.MinDurationMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
