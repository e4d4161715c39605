package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneOldFiles removes files in dir matching pattern whose modification time
// is older than retentionDays before now. It returns the number of removed
// files. A retentionDays value of 0 disables pruning.
func PruneOldFiles(logger *slog.Logger, dir, pattern string, retentionDays int, now time.Time) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			if matched, err := filepath.Match(pattern, name); err != nil || !matched {
				continue
			}
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if err := os.Remove(fullPath); err != nil {
			WarnWithContext(logger, "retention remove failed; file remains", "retention_failed",
				String("path", fullPath),
				Error(err),
				String(FieldErrorHint, "check file permissions and directory ownership"),
				String(FieldImpact, "old file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("old file pruned",
				String("path", fullPath),
				String(FieldEventType, "file_pruned"),
			)
		}
	}
	return removed
}
