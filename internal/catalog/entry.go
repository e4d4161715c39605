package catalog

import (
	"slices"
	"time"

	"cinedex/internal/textutil"
)

// Metadata is the OMDB record attached to a canonical entry.
type Metadata struct {
	IMDBID     string `json:"imdbId"`
	Title      string `json:"title,omitempty"`
	Year       int    `json:"year,omitempty"`
	Rated      string `json:"rated,omitempty"`
	Released   string `json:"released,omitempty"`
	Runtime    string `json:"runtime,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Director   string `json:"director,omitempty"`
	Writer     string `json:"writer,omitempty"`
	Actors     string `json:"actors,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Language   string `json:"language,omitempty"`
	Country    string `json:"country,omitempty"`
	Poster     string `json:"poster,omitempty"`
	IMDBRating string `json:"imdbRating,omitempty"`
	IMDBVotes  string `json:"imdbVotes,omitempty"`
	Type       string `json:"type,omitempty"`
	// Confidence is the match tier that attached this metadata, or "curated".
	Confidence string `json:"confidence,omitempty"`
}

// Entry is one movie in the catalog.
type Entry struct {
	Key             string    `json:"id"`
	Title           string    `json:"title"`
	AlternateTitles []string  `json:"alternateTitles,omitempty"`
	Year            int       `json:"year,omitempty"`
	Sources         Sources   `json:"sources"`
	Metadata        *Metadata `json:"metadata,omitempty"`
	ExtractedTitle  string    `json:"extractedTitle,omitempty"`
	Verified        bool      `json:"verified,omitempty"`
	LastUpdated     time.Time `json:"lastUpdated,omitzero"`
}

// Clone returns a deep copy.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.AlternateTitles = slices.Clone(e.AlternateTitles)
	c.Sources = e.Sources.clone()
	if e.Metadata != nil {
		m := *e.Metadata
		c.Metadata = &m
	}
	return &c
}

// Canonical reports whether the entry sits under an IMDB id.
func (e *Entry) Canonical() bool {
	return e != nil && IsCanonicalKey(e.Key)
}

// CanonicalID returns the entry key when canonical, otherwise the IMDB id of
// attached metadata. Empty when neither exists.
func (e *Entry) CanonicalID() string {
	if e == nil {
		return ""
	}
	if IsCanonicalKey(e.Key) {
		return e.Key
	}
	if e.Metadata != nil && IsCanonicalKey(e.Metadata.IMDBID) {
		return e.Metadata.IMDBID
	}
	return ""
}

// TemporarySource returns the source a temporary key was derived from.
// The exact id is tried first, then the id with a "-N" collision suffix
// removed.
func (e *Entry) TemporarySource() (SourceRecord, bool) {
	if e == nil {
		return nil, false
	}
	key, ok := DecodeTemporaryKey(e.Key)
	if !ok {
		return nil, false
	}
	if i := e.Sources.Index(key); i >= 0 {
		return e.Sources[i], true
	}
	if stripped, ok := stripCollisionSuffix(key.ID); ok {
		if i := e.Sources.Index(SourceKey{Kind: key.Kind, ID: stripped}); i >= 0 {
			return e.Sources[i], true
		}
	}
	return nil, false
}

// addTitle records title as the display title when none is set, otherwise as
// an alternate unless it folds to an existing one.
func (e *Entry) addTitle(title string) {
	if title == "" {
		return
	}
	if e.Title == "" {
		e.Title = title
		return
	}
	folded := textutil.Fold(title)
	if folded == textutil.Fold(e.Title) {
		return
	}
	for _, alt := range e.AlternateTitles {
		if textutil.Fold(alt) == folded {
			return
		}
	}
	e.AlternateTitles = append(e.AlternateTitles, title)
}

// promoteTitle makes title the display title and keeps the previous one as an
// alternate.
func (e *Entry) promoteTitle(title string) {
	if title == "" || title == e.Title {
		return
	}
	previous := e.Title
	e.Title = title
	folded := textutil.Fold(title)
	e.AlternateTitles = slices.DeleteFunc(e.AlternateTitles, func(alt string) bool {
		return textutil.Fold(alt) == folded
	})
	if previous != "" && textutil.Fold(previous) != folded {
		e.addTitle(previous)
	}
}

// dropAlternate removes title from the alternates.
func (e *Entry) dropAlternate(title string) {
	if title == "" {
		return
	}
	folded := textutil.Fold(title)
	e.AlternateTitles = slices.DeleteFunc(e.AlternateTitles, func(alt string) bool {
		return textutil.Fold(alt) == folded
	})
}
