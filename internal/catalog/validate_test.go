package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cinedex/internal/catalog"
)

func TestValidateCleanStore(t *testing.T) {
	store := catalog.NewStore()
	store.Put(&catalog.Entry{Key: "tt0037638", Title: "Detour", Sources: catalog.Sources{archive("detour", "Detour")}, Metadata: &catalog.Metadata{IMDBID: "tt0037638"}})
	store.Put(&catalog.Entry{Key: "youtube-x", Title: "X", Sources: catalog.Sources{youtube("x", "X")}})
	assert.Empty(t, catalog.Validate(store))
}

func TestValidateReportsViolations(t *testing.T) {
	store := catalog.NewStore()
	store.Put(&catalog.Entry{Key: "tt0037638", Title: "Detour", Sources: catalog.Sources{archive("detour", "Detour")}})
	store.Put(&catalog.Entry{Key: "archive-missing", Title: "Gone", Sources: catalog.Sources{archive("other", "Gone")}})
	store.Put(&catalog.Entry{Key: "youtube-dup", Title: "Dup", Sources: catalog.Sources{youtube("dup", "Dup"), youtube("dup", "Dup"), archive("detour", "Detour")}})
	store.Put(&catalog.Entry{Key: "weird", Title: "W", Sources: catalog.Sources{archive("w", "W")}})

	var got []string
	for _, p := range catalog.Validate(store) {
		got = append(got, p.String())
	}
	assert.ElementsMatch(t, []string{
		"archive-missing: temporary key has no matching source",
		"tt0037638: canonical entry has no metadata",
		"weird: key is neither an IMDB id nor a temporary key",
		"youtube-dup: duplicate source youtube:dup",
		"youtube-dup: source archive.org:detour also stored under tt0037638",
	}, got)
}
