package dedup

import (
	"cinedex/internal/catalog"
	"cinedex/internal/textutil"
	"cinedex/internal/titles"
)

// DefaultThreshold is the minimum normalized-title similarity for pass two.
const DefaultThreshold = 0.85

// Options tune FindGroups.
type Options struct {
	Threshold float64
	// RequireYearAgreement keeps entries with different known years apart
	// even when their titles match.
	RequireYearAgreement bool
}

// Reason names the pass that formed a group.
type Reason string

const (
	ReasonCanonicalID Reason = "canonical_id"
	ReasonTitle       Reason = "title_similarity"
)

// Group is a set of keys believed to describe the same film.
type Group struct {
	Keys        []string `json:"keys"`
	Reason      Reason   `json:"reason"`
	CanonicalID string   `json:"canonicalId,omitempty"`
	// Similarity is the lowest seed similarity among title group members.
	Similarity float64 `json:"similarity,omitempty"`
}

// FindGroups returns every group of two or more keys.
func FindGroups(store *catalog.Store, opts Options) []Group {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	keys := store.Keys()
	groups, assigned := canonicalGroups(store, keys)
	groups = append(groups, titleGroups(store, keys, assigned, opts)...)
	return groups
}

func canonicalGroups(store *catalog.Store, keys []string) ([]Group, map[string]bool) {
	byID := make(map[string][]string)
	var order []string
	for _, key := range keys {
		entry, _ := store.Get(key)
		id := entry.CanonicalID()
		if id == "" {
			continue
		}
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = append(byID[id], key)
	}

	assigned := make(map[string]bool)
	var groups []Group
	for _, id := range order {
		members := byID[id]
		if len(members) < 2 {
			continue
		}
		for _, key := range members {
			assigned[key] = true
		}
		groups = append(groups, Group{Keys: members, Reason: ReasonCanonicalID, CanonicalID: id})
	}
	return groups, assigned
}

type candidate struct {
	key   string
	title string
	year  int
}

func titleGroups(store *catalog.Store, keys []string, assigned map[string]bool, opts Options) []Group {
	pool := make([]candidate, 0, len(keys))
	for _, key := range keys {
		if assigned[key] {
			continue
		}
		entry, _ := store.Get(key)
		title := ComparableTitle(entry)
		if title == "" {
			continue
		}
		pool = append(pool, candidate{key: key, title: title, year: entry.Year})
	}

	placed := make([]bool, len(pool))
	var groups []Group
	for i, seed := range pool {
		if placed[i] {
			continue
		}
		group := Group{Keys: []string{seed.key}, Reason: ReasonTitle, Similarity: 1}
		for j := i + 1; j < len(pool); j++ {
			if placed[j] {
				continue
			}
			other := pool[j]
			if opts.RequireYearAgreement && seed.year > 0 && other.year > 0 && seed.year != other.year {
				continue
			}
			sim := textutil.Similarity(seed.title, other.title)
			if sim < opts.Threshold {
				continue
			}
			placed[j] = true
			group.Keys = append(group.Keys, other.key)
			group.Similarity = min(group.Similarity, sim)
		}
		if len(group.Keys) > 1 {
			placed[i] = true
			groups = append(groups, group)
		}
	}
	return groups
}

// ComparableTitle is the folded, normalized title used for similarity. The
// externally extracted title is preferred when present.
func ComparableTitle(entry *catalog.Entry) string {
	if entry == nil {
		return ""
	}
	raw := entry.ExtractedTitle
	if raw == "" {
		raw = entry.Title
	}
	if raw == "" {
		return ""
	}
	return textutil.Fold(titles.Normalize(raw))
}
