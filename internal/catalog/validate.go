package catalog

import "fmt"

// Problem is one invariant violation found by Validate.
type Problem struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return p.Key + ": " + p.Message
}

// Validate checks every store invariant and returns the violations in key
// order. A valid store yields nil.
func Validate(store *Store) []Problem {
	var problems []Problem
	add := func(key, format string, args ...any) {
		problems = append(problems, Problem{Key: key, Message: fmt.Sprintf(format, args...)})
	}
	owners := make(map[SourceKey]string)

	for key, entry := range store.All() {
		if entry.Key != key {
			add(key, "entry id %q differs from its key", entry.Key)
		}
		switch {
		case IsCanonicalKey(key):
			if entry.Metadata == nil {
				add(key, "canonical entry has no metadata")
			} else if entry.Metadata.IMDBID != "" && entry.Metadata.IMDBID != key {
				add(key, "metadata imdbId %s differs from key", entry.Metadata.IMDBID)
			}
		case IsTemporaryKey(key):
			if _, ok := entry.TemporarySource(); !ok {
				add(key, "temporary key has no matching source")
			}
		default:
			add(key, "key is neither an IMDB id nor a temporary key")
		}
		if len(entry.Sources) == 0 {
			add(key, "entry has no sources")
		}
		if entry.Title == "" {
			add(key, "entry has no title")
		}

		seen := make(map[SourceKey]bool, len(entry.Sources))
		for _, src := range entry.Sources {
			sk := src.Key()
			if sk.ID == "" {
				add(key, "%s source has an empty id", sk.Kind)
				continue
			}
			if seen[sk] {
				add(key, "duplicate source %s", sk)
				continue
			}
			seen[sk] = true
			if other, ok := owners[sk]; ok {
				add(key, "source %s also stored under %s", sk, other)
				continue
			}
			owners[sk] = key
		}
	}
	return problems
}
