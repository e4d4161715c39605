package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cinedex/internal/catalog"
)

func TestKeyClassification(t *testing.T) {
	tests := []struct {
		key       string
		canonical bool
		temporary bool
	}{
		{"tt0133093", true, false},
		{"tt12345678", true, false},
		{"tt123456", false, false},
		{"TT0133093", false, false},
		{"archive-horror_express", false, true},
		{"youtube-dQw4w9WgXcQ", false, true},
		{"archive-", false, false},
		{"vimeo-123", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.canonical, catalog.IsCanonicalKey(tt.key), tt.key)
		assert.Equal(t, tt.temporary, catalog.IsTemporaryKey(tt.key), tt.key)
		if tt.canonical || tt.temporary {
			assert.NoError(t, catalog.ValidateKey(tt.key), tt.key)
		} else {
			assert.ErrorIs(t, catalog.ValidateKey(tt.key), catalog.ErrInvalidKey, tt.key)
		}
	}
}

func TestTemporaryKeyRoundTrip(t *testing.T) {
	src := catalog.SourceKey{Kind: catalog.KindYouTube, ID: "a-b-c"}
	key := catalog.TemporaryKey(src)
	assert.Equal(t, "youtube-a-b-c", key)
	decoded, ok := catalog.DecodeTemporaryKey(key)
	assert.True(t, ok)
	assert.Equal(t, src, decoded)
}

func TestTemporarySourcePrefersExactID(t *testing.T) {
	// an archive identifier that itself ends in -<digits>
	entry := &catalog.Entry{
		Key:     "archive-nosferatu-1922",
		Sources: catalog.Sources{archive("nosferatu", "Nosferatu"), archive("nosferatu-1922", "Nosferatu")},
	}
	src, ok := entry.TemporarySource()
	assert.True(t, ok)
	assert.Equal(t, "nosferatu-1922", src.Key().ID)

	entry.Key = "archive-nosferatu-7"
	src, ok = entry.TemporarySource()
	assert.True(t, ok)
	assert.Equal(t, "nosferatu", src.Key().ID)
}

func TestParseKind(t *testing.T) {
	kind, err := catalog.ParseKind("Archive")
	assert.NoError(t, err)
	assert.Equal(t, catalog.KindArchive, kind)
	_, err = catalog.ParseKind("vimeo")
	assert.Error(t, err)
}
