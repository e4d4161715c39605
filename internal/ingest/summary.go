package ingest

import (
	"fmt"
	"time"
)

// MaxFailureReasons caps the failure list carried by a Summary.
const MaxFailureReasons = 20

// Summary reports the outcome of one run.
type Summary struct {
	RunID       string        `json:"runId"`
	Operation   string        `json:"operation"`
	DryRun      bool          `json:"dryRun"`
	Processed   int           `json:"processed"`
	Matched     int           `json:"matched"`
	Unmatched   int           `json:"unmatched"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Created     int           `json:"created"`
	Updated     int           `json:"updated"`
	Migrated    int           `json:"migrated"`
	Checkpoints int           `json:"checkpoints"`
	Failures    []string      `json:"failures,omitempty"`
	Duration    time.Duration `json:"duration"`
}

func (s *Summary) fail(key, reason string) {
	s.Failed++
	s.note(key, reason)
}

func (s *Summary) note(key, reason string) {
	if len(s.Failures) >= MaxFailureReasons {
		return
	}
	s.Failures = append(s.Failures, fmt.Sprintf("%s: %s", key, reason))
}

// Truncated reports whether failures beyond the cap were dropped.
func (s Summary) Truncated() bool {
	return s.Failed > len(s.Failures)
}
