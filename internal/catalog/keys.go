package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEntryNotFound reports a key absent from the store.
	ErrEntryNotFound = errors.New("catalog: entry not found")
	// ErrInvalidKey reports a key that is neither canonical nor temporary.
	ErrInvalidKey = errors.New("catalog: invalid key")
)

var (
	canonicalKeyPattern = regexp.MustCompile(`^tt\d{7,}$`)
	collisionSuffix     = regexp.MustCompile(`^(.+)-\d+$`)
)

// IsCanonicalKey reports whether key is an IMDB id.
func IsCanonicalKey(key string) bool {
	return canonicalKeyPattern.MatchString(key)
}

// TemporaryKey derives the provisional store key for a source.
func TemporaryKey(source SourceKey) string {
	return source.Kind.keyPrefix() + "-" + source.ID
}

// DecodeTemporaryKey splits a temporary key into kind and id. The id is
// returned as written, including any collision suffix.
func DecodeTemporaryKey(key string) (SourceKey, bool) {
	for _, kind := range []Kind{KindArchive, KindYouTube} {
		prefix := kind.keyPrefix() + "-"
		if id, ok := strings.CutPrefix(key, prefix); ok && id != "" {
			return SourceKey{Kind: kind, ID: id}, true
		}
	}
	return SourceKey{}, false
}

// IsTemporaryKey reports whether key decodes as a temporary key.
func IsTemporaryKey(key string) bool {
	_, ok := DecodeTemporaryKey(key)
	return ok
}

// ValidateKey returns ErrInvalidKey for anything but canonical or temporary keys.
func ValidateKey(key string) error {
	if IsCanonicalKey(key) || IsTemporaryKey(key) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidKey, key)
}

func stripCollisionSuffix(id string) (string, bool) {
	m := collisionSuffix.FindStringSubmatch(id)
	if m == nil {
		return "", false
	}
	return m[1], true
}
