package config

const (
	defaultConfigPath  = "~/.config/cinedex/config.toml"
	projectConfigName  = "cinedex.toml"
	defaultStoreFile   = "~/.local/share/cinedex/movies.json"
	defaultAttempts    = "~/.local/share/cinedex/failed-omdb-matches.json"
	defaultCacheDB     = "~/.cache/cinedex/omdb.db"
	defaultLogDir      = "~/.local/share/cinedex/logs"
	defaultOMDBBaseURL = "https://www.omdbapi.com/"

	defaultOMDBMinIntervalMillis = 250
	defaultOMDBRateLimitDelay    = 5
	defaultOMDBMaxRetries        = 3
	defaultOMDBTimeoutSeconds    = 15
	defaultOMDBCacheTTLHours     = 24 * 7

	defaultArchiveBaseURL  = "https://archive.org"
	defaultArchivePageSize = 1000

	defaultYouTubeBaseURL     = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeMinDuration = 40

	defaultMinConfidence   = "high"
	defaultCheckpointEvery = 50

	defaultDedupThreshold = 0.85

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	defaultNtfyTimeoutSeconds = 10
)

var defaultArchiveCollections = []string{"feature_films", "silent_films", "film_noir", "sci-fi_horror"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StoreFile:    defaultStoreFile,
			AttemptsFile: defaultAttempts,
			CacheDB:      defaultCacheDB,
			LogDir:       defaultLogDir,
		},
		OMDB: OMDB{
			BaseURL:               defaultOMDBBaseURL,
			MinIntervalMillis:     defaultOMDBMinIntervalMillis,
			RateLimitDelaySeconds: defaultOMDBRateLimitDelay,
			MaxRetries:            defaultOMDBMaxRetries,
			TimeoutSeconds:        defaultOMDBTimeoutSeconds,
			CacheEnabled:          true,
			CacheTTLHours:         defaultOMDBCacheTTLHours,
		},
		Archive: Archive{
			BaseURL:     defaultArchiveBaseURL,
			Collections: append([]string(nil), defaultArchiveCollections...),
			PageSize:    defaultArchivePageSize,
		},
		YouTube: YouTube{
			BaseURL:            defaultYouTubeBaseURL,
			MinDurationMinutes: defaultYouTubeMinDuration,
		},
		Resolution: Resolution{
			MinConfidence:   defaultMinConfidence,
			CheckpointEvery: defaultCheckpointEvery,
		},
		Dedup: Dedup{
			Threshold: defaultDedupThreshold,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
	}
}
