package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"cinedex/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Store directory", filepath.Dir(cfg.Paths.StoreFile)))
	if dir := filepath.Dir(cfg.Paths.AttemptsFile); dir != filepath.Dir(cfg.Paths.StoreFile) {
		results = append(results, CheckDirectoryAccess("Attempts directory", dir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.OMDB.CacheEnabled {
		results = append(results, CheckDirectoryAccess("Cache directory", filepath.Dir(cfg.Paths.CacheDB)))
	}

	results = append(results, CheckStoreFile(cfg.Paths.StoreFile))
	results = append(results, CheckStoreLock(cfg.Paths.StoreFile))

	results = append(results, CheckOMDB(ctx, cfg.OMDB.APIKey, cfg.OMDB.BaseURL))

	if strings.TrimSpace(cfg.YouTube.APIKey) != "" {
		results = append(results, CheckYouTube(ctx, cfg.YouTube.BaseURL, cfg.YouTube.APIKey))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
