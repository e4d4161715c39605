package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"cinedex/internal/fileutil"
)

// Query is one search sent to OMDB.
type Query struct {
	Query string `json:"query"`
	Year  int    `json:"year,omitempty"`
}

// BestCandidate is the top-scoring candidate of a failed resolution.
type BestCandidate struct {
	IMDBID string `json:"imdbId"`
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`
	Tier   string `json:"tier"`
}

// Attempt is the suppression record for one key that failed to resolve.
type Attempt struct {
	Identifier    string         `json:"identifier"`
	OriginalTitle string         `json:"originalTitle"`
	Attempts      []Query        `json:"attempts"`
	FailedAt      time.Time      `json:"failedAt"`
	LastAttempt   time.Time      `json:"lastAttempt"`
	Reason        string         `json:"reason"`
	Best          *BestCandidate `json:"bestCandidate,omitempty"`
}

// AttemptLog is the failure-suppression side file. It is not safe for
// concurrent use.
type AttemptLog struct {
	path    string
	order   []string
	byKey   map[string]*Attempt
	changed bool
}

// NewAttemptLog returns an empty log that saves to path.
func NewAttemptLog(path string) *AttemptLog {
	return &AttemptLog{path: path, byKey: make(map[string]*Attempt)}
}

// LoadAttempts reads the log at path. A missing file yields an empty log.
func LoadAttempts(path string) (*AttemptLog, error) {
	log := NewAttemptLog(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return log, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read attempts file: %w", err)
	}
	var records []Attempt
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode attempts file %s: %w", path, err)
	}
	for i := range records {
		rec := records[i]
		if rec.Identifier == "" {
			continue
		}
		if existing, ok := log.byKey[rec.Identifier]; ok {
			mergeAttempt(existing, rec)
			continue
		}
		log.order = append(log.order, rec.Identifier)
		log.byKey[rec.Identifier] = &rec
	}
	return log, nil
}

// Path returns the file the log saves to.
func (l *AttemptLog) Path() string { return l.path }

// Changed reports whether the log was mutated since load or the last save.
func (l *AttemptLog) Changed() bool { return l.changed }

// Len returns the number of suppressed keys.
func (l *AttemptLog) Len() int { return len(l.order) }

// Save writes the log atomically.
func (l *AttemptLog) Save() error {
	if l.path == "" {
		return errors.New("attempts log has no path")
	}
	if err := fileutil.WriteJSONAtomic(l.path, l.All()); err != nil {
		return fmt.Errorf("save attempts file: %w", err)
	}
	l.changed = false
	return nil
}

// All returns copies of every attempt in insertion order.
func (l *AttemptLog) All() []Attempt {
	out := make([]Attempt, 0, len(l.order))
	for _, key := range l.order {
		a := *l.byKey[key]
		a.Attempts = cloneQueries(a.Attempts)
		out = append(out, a)
	}
	return out
}

// Get returns the attempt recorded for key.
func (l *AttemptLog) Get(key string) (Attempt, bool) {
	a, ok := l.byKey[key]
	if !ok {
		return Attempt{}, false
	}
	return *a, true
}

// Suppressed reports whether key has a recorded failure.
func (l *AttemptLog) Suppressed(key string) bool {
	_, ok := l.byKey[key]
	return ok
}

// Record stores a failure. A repeat failure keeps the original FailedAt and
// accumulates queries.
func (l *AttemptLog) Record(a Attempt) {
	if a.Identifier == "" {
		return
	}
	l.changed = true
	if existing, ok := l.byKey[a.Identifier]; ok {
		mergeAttempt(existing, a)
		return
	}
	if a.FailedAt.IsZero() {
		a.FailedAt = a.LastAttempt
	}
	a.Attempts = cloneQueries(a.Attempts)
	l.order = append(l.order, a.Identifier)
	l.byKey[a.Identifier] = &a
}

// cloneQueries copies qs, never returning nil so the log encodes "attempts": [].
func cloneQueries(qs []Query) []Query {
	out := make([]Query, len(qs))
	copy(out, qs)
	return out
}

// Remove drops key. It reports whether anything was removed.
func (l *AttemptLog) Remove(key string) bool {
	if _, ok := l.byKey[key]; !ok {
		return false
	}
	delete(l.byKey, key)
	l.order = slices.DeleteFunc(l.order, func(k string) bool { return k == key })
	l.changed = true
	return true
}

// Rekey moves the record for oldKey to newKey after a key migration. An
// existing record at newKey absorbs the old one.
func (l *AttemptLog) Rekey(oldKey, newKey string) {
	a, ok := l.byKey[oldKey]
	if !ok || oldKey == newKey {
		return
	}
	moved := *a
	l.Remove(oldKey)
	moved.Identifier = newKey
	l.Record(moved)
}

func mergeAttempt(existing *Attempt, in Attempt) {
	for _, q := range in.Attempts {
		if !slices.Contains(existing.Attempts, q) {
			existing.Attempts = append(existing.Attempts, q)
		}
	}
	if existing.FailedAt.IsZero() || (!in.FailedAt.IsZero() && in.FailedAt.Before(existing.FailedAt)) {
		existing.FailedAt = in.FailedAt
	}
	if in.LastAttempt.After(existing.LastAttempt) {
		existing.LastAttempt = in.LastAttempt
	}
	if in.OriginalTitle != "" {
		existing.OriginalTitle = in.OriginalTitle
	}
	if in.Reason != "" {
		existing.Reason = in.Reason
	}
	if in.Best != nil {
		existing.Best = in.Best
	}
}
