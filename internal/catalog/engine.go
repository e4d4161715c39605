package catalog

import (
	"fmt"
	"log/slog"
	"time"

	"cinedex/internal/logging"
)

// Engine applies merges and key migrations to a Store.
type Engine struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock sets the source of last-updated stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the decision logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs a merge engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "merge")
	return e
}

func (e *Engine) stamp() time.Time {
	return e.now().UTC()
}

// Upsert merges incoming into the entry at key, creating it when absent.
// It returns the stored entry and whether it was created.
//
// Sources merge by (kind, id). Metadata is replaced only when incoming has
// it. Year and extracted title fill only when empty. Verified is sticky.
func (e *Engine) Upsert(store *Store, key string, incoming *Entry) (*Entry, bool, error) {
	if key == "" {
		return nil, false, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if incoming == nil {
		return nil, false, fmt.Errorf("upsert %s: nil entry", key)
	}
	in := incoming.Clone()
	in.Key = key

	existing, ok := store.Get(key)
	if !ok {
		if in.Metadata != nil && in.Metadata.Title != "" {
			in.promoteTitle(in.Metadata.Title)
		}
		if in.Year == 0 && in.Metadata != nil {
			in.Year = in.Metadata.Year
		}
		if in.Sources == nil {
			in.Sources = Sources{}
		}
		in.LastUpdated = e.stamp()
		store.Put(in)
		e.logger.Debug("entry created",
			logging.String(logging.FieldEntryKey, key),
			logging.Int("sources", len(in.Sources)),
		)
		return in, true, nil
	}

	merged := existing.Clone()
	merged.Sources = mergeSources(merged.Sources, in.Sources)
	if in.Metadata != nil {
		merged.Metadata = in.Metadata
		if in.Metadata.Title != "" {
			merged.promoteTitle(in.Metadata.Title)
		}
		if in.Metadata.Year > 0 {
			merged.Year = in.Metadata.Year
		}
	}
	merged.addTitle(in.Title)
	for _, alt := range in.AlternateTitles {
		merged.addTitle(alt)
	}
	if merged.Year == 0 {
		merged.Year = in.Year
	}
	if merged.ExtractedTitle == "" {
		merged.ExtractedTitle = in.ExtractedTitle
	}
	merged.Verified = merged.Verified || in.Verified
	merged.LastUpdated = e.stamp()
	store.Put(merged)
	return merged, false, nil
}

// MigrateKey moves the entry at oldKey to newKey. An occupied destination
// absorbs the old entry's sources instead of being overwritten.
func (e *Engine) MigrateKey(store *Store, oldKey, newKey string) (*Entry, error) {
	if newKey == "" {
		return nil, fmt.Errorf("%w: empty destination key", ErrInvalidKey)
	}
	entry, ok := store.Get(oldKey)
	if !ok {
		return nil, fmt.Errorf("migrate %s: %w", oldKey, ErrEntryNotFound)
	}
	if oldKey == newKey {
		return entry, nil
	}
	if store.Has(newKey) {
		if err := e.Absorb(store, newKey, oldKey); err != nil {
			return nil, err
		}
		merged, _ := store.Get(newKey)
		e.logger.Info("key migrated into existing entry",
			logging.String(logging.FieldEntryKey, newKey),
			logging.String("from_key", oldKey),
			logging.String(logging.FieldDecisionType, "key_migration"),
			logging.String("decision_result", "absorbed"),
		)
		return merged, nil
	}
	moved := entry.Clone()
	moved.Key = newKey
	moved.LastUpdated = e.stamp()
	store.Put(moved)
	store.Delete(oldKey)
	e.logger.Info("key migrated",
		logging.String(logging.FieldEntryKey, newKey),
		logging.String("from_key", oldKey),
		logging.String(logging.FieldDecisionType, "key_migration"),
		logging.String("decision_result", "renamed"),
	)
	return moved, nil
}

// Absorb folds the entry at fromKey into the entry at intoKey and deletes
// fromKey. The destination keeps its own metadata when it has any.
func (e *Engine) Absorb(store *Store, intoKey, fromKey string) error {
	if intoKey == fromKey {
		return nil
	}
	into, ok := store.Get(intoKey)
	if !ok {
		return fmt.Errorf("absorb into %s: %w", intoKey, ErrEntryNotFound)
	}
	from, ok := store.Get(fromKey)
	if !ok {
		return fmt.Errorf("absorb from %s: %w", fromKey, ErrEntryNotFound)
	}
	merged := into.Clone()
	merged.Sources = mergeSources(merged.Sources, from.Sources)
	if merged.Metadata == nil && from.Metadata != nil {
		m := *from.Metadata
		merged.Metadata = &m
	}
	merged.addTitle(from.Title)
	for _, alt := range from.AlternateTitles {
		merged.addTitle(alt)
	}
	if merged.Year == 0 {
		merged.Year = from.Year
	}
	if merged.ExtractedTitle == "" {
		merged.ExtractedTitle = from.ExtractedTitle
	}
	merged.Verified = merged.Verified || from.Verified
	merged.LastUpdated = e.stamp()
	store.Put(merged)
	store.Delete(fromKey)
	return nil
}

// RevertToTemporary moves a canonical entry back to a temporary key derived
// from its first source, clearing metadata and verification. The display
// title returns to that source's title. When that key
// is taken a -1, -2, ... suffix is appended until a free key is found.
func (e *Engine) RevertToTemporary(store *Store, canonicalKey string) (string, error) {
	entry, ok := store.Get(canonicalKey)
	if !ok {
		return "", fmt.Errorf("revert %s: %w", canonicalKey, ErrEntryNotFound)
	}
	if len(entry.Sources) == 0 {
		return "", fmt.Errorf("revert %s: entry has no sources", canonicalKey)
	}
	key := FreeTemporaryKey(store, entry.Sources[0].Key(), canonicalKey)

	reverted := entry.Clone()
	reverted.Key = key
	if title := entry.Sources[0].Common().Title; title != "" {
		reverted.promoteTitle(title)
		if entry.Metadata != nil {
			reverted.dropAlternate(entry.Metadata.Title)
		}
	}
	reverted.Metadata = nil
	reverted.Verified = false
	reverted.LastUpdated = e.stamp()
	store.Delete(canonicalKey)
	store.Put(reverted)
	e.logger.Info("entry reverted to temporary key",
		logging.String(logging.FieldEntryKey, key),
		logging.String("from_key", canonicalKey),
		logging.String(logging.FieldDecisionType, "key_revert"),
	)
	return key, nil
}

// RemoveSource drops one source from the entry at key. The entry is deleted
// when no sources remain; a temporary entry that lost its keying source is
// re-keyed from its next source. It returns the entry's key afterwards, empty
// when deleted.
func (e *Engine) RemoveSource(store *Store, key string, source SourceKey) (string, error) {
	entry, ok := store.Get(key)
	if !ok {
		return "", fmt.Errorf("remove source from %s: %w", key, ErrEntryNotFound)
	}
	i := entry.Sources.Index(source)
	if i < 0 {
		return "", fmt.Errorf("remove source %s from %s: %w", source, key, ErrEntryNotFound)
	}
	updated := entry.Clone()
	updated.Sources = append(updated.Sources[:i:i], updated.Sources[i+1:]...)
	if len(updated.Sources) == 0 {
		store.Delete(key)
		e.logger.Info("entry removed with last source",
			logging.String(logging.FieldEntryKey, key),
			logging.String("source", source.String()),
		)
		return "", nil
	}
	updated.LastUpdated = e.stamp()
	if IsTemporaryKey(key) {
		if _, ok := updated.TemporarySource(); !ok {
			store.Delete(key)
			updated.Key = FreeTemporaryKey(store, updated.Sources[0].Key(), key)
		}
	}
	store.Put(updated)
	return updated.Key, nil
}

// FreeTemporaryKey returns the temporary key for source, suffixed with -1,
// -2, ... until no entry other than self occupies it. Pass an empty self for
// a new entry.
func FreeTemporaryKey(store *Store, source SourceKey, self string) string {
	base := TemporaryKey(source)
	key := base
	for n := 1; store.Has(key) && key != self; n++ {
		key = fmt.Sprintf("%s-%d", base, n)
	}
	return key
}
