package catalog

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"
)

const (
	// SchemaKey is the reserved top-level key of the store document.
	SchemaKey         = "_schema"
	SchemaVersion     = "1.0"
	SchemaDescription = "cinedex movie catalog keyed by IMDB id or temporary source key"
)

// Schema is the document header.
type Schema struct {
	Version     string    `json:"version"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
}

// Store is the keyed catalog. It is not safe for concurrent use.
type Store struct {
	Schema  Schema
	entries map[string]*Entry
}

// NewStore returns an empty store with a stamped schema block.
func NewStore() *Store {
	return &Store{
		Schema:  Schema{Version: SchemaVersion, Description: SchemaDescription},
		entries: make(map[string]*Entry),
	}
}

func (s *Store) init() {
	if s.entries == nil {
		s.entries = make(map[string]*Entry)
	}
}

// Get returns the entry stored at key. The pointer is live.
func (s *Store) Get(key string) (*Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Has reports whether key is occupied.
func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Put stores e under e.Key, replacing any entry there.
func (s *Store) Put(e *Entry) {
	s.init()
	s.entries[e.Key] = e
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(key string) {
	delete(s.entries, key)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Keys returns all keys sorted.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.entries))
}

// All iterates entries in key order. Mutating the store during iteration
// affects only keys not yet visited.
func (s *Store) All() iter.Seq2[string, *Entry] {
	return func(yield func(string, *Entry) bool) {
		for _, key := range s.Keys() {
			e, ok := s.entries[key]
			if !ok {
				continue
			}
			if !yield(key, e) {
				return
			}
		}
	}
}

// FindSource returns the key of the entry holding source.
func (s *Store) FindSource(source SourceKey) (string, bool) {
	for key, e := range s.All() {
		if e.Sources.Index(source) >= 0 {
			return key, true
		}
	}
	return "", false
}

// SourceIndex maps every stored source to its entry key.
func (s *Store) SourceIndex() map[SourceKey]string {
	index := make(map[SourceKey]string)
	for key, e := range s.entries {
		for _, src := range e.Sources {
			index[src.Key()] = key
		}
	}
	return index
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{Schema: s.Schema, entries: make(map[string]*Entry, len(s.entries))}
	for key, e := range s.entries {
		c.entries[key] = e.Clone()
	}
	return c
}

func (s *Store) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.entries)+1)
	doc[SchemaKey] = s.Schema
	for key, e := range s.entries {
		doc[key] = e
	}
	return json.Marshal(doc)
}

func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entries := make(map[string]*Entry, len(raw))
	schema := Schema{Version: SchemaVersion, Description: SchemaDescription}
	for key, value := range raw {
		if key == SchemaKey {
			if err := json.Unmarshal(value, &schema); err != nil {
				return fmt.Errorf("decode %s: %w", SchemaKey, err)
			}
			continue
		}
		var e Entry
		if err := json.Unmarshal(value, &e); err != nil {
			return fmt.Errorf("decode entry %s: %w", key, err)
		}
		// the document key is authoritative
		e.Key = key
		entries[key] = &e
	}
	s.Schema = schema
	s.entries = entries
	return nil
}
