package dedup

import (
	"fmt"

	"cinedex/internal/catalog"
)

// Score weighs how good a representative an entry makes.
func Score(entry *catalog.Entry) int {
	if entry == nil {
		return 0
	}
	score := 5 * len(entry.Sources)
	if entry.Canonical() {
		score += 100
	}
	if entry.Metadata != nil {
		score += 50
	}
	if entry.ExtractedTitle != "" {
		score += 25
	}
	if entry.Year > 0 {
		score += 10
	}
	return score
}

// Representative returns the highest scoring key of group. Ties keep the
// earlier key.
func Representative(store *catalog.Store, group Group) string {
	best, bestScore := "", -1
	for _, key := range group.Keys {
		entry, ok := store.Get(key)
		if !ok {
			continue
		}
		if s := Score(entry); s > bestScore {
			best, bestScore = key, s
		}
	}
	return best
}

// Result describes one applied merge.
type Result struct {
	Kept    string   `json:"kept"`
	Removed []string `json:"removed"`
	Reason  Reason   `json:"reason"`
}

// Merge folds every member of group into its representative and deletes the
// others. A temporary representative of a canonical-id group moves to that
// id when it is free.
func Merge(store *catalog.Store, engine *catalog.Engine, group Group) (Result, error) {
	kept := Representative(store, group)
	if kept == "" {
		return Result{}, fmt.Errorf("merge group %v: %w", group.Keys, catalog.ErrEntryNotFound)
	}
	res := Result{Kept: kept, Reason: group.Reason}
	for _, key := range group.Keys {
		if key == kept || !store.Has(key) {
			continue
		}
		if err := engine.Absorb(store, kept, key); err != nil {
			return res, fmt.Errorf("merge %s into %s: %w", key, kept, err)
		}
		res.Removed = append(res.Removed, key)
	}
	if group.CanonicalID != "" && !catalog.IsCanonicalKey(kept) && !store.Has(group.CanonicalID) {
		if _, err := engine.MigrateKey(store, kept, group.CanonicalID); err != nil {
			return res, err
		}
		res.Removed = append(res.Removed, kept)
		res.Kept = group.CanonicalID
	}
	return res, nil
}

// Apply merges every group in order and stops at the first error.
func Apply(store *catalog.Store, engine *catalog.Engine, groups []Group) ([]Result, error) {
	results := make([]Result, 0, len(groups))
	for _, group := range groups {
		res, err := Merge(store, engine, group)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
