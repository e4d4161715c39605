package storefile_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cinedex/internal/catalog"
	"cinedex/internal/storefile"
)

var stamp = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

func newFile(t *testing.T) *storefile.File {
	t.Helper()
	return storefile.New(filepath.Join(t.TempDir(), "data", "movies.json"), storefile.WithClock(func() time.Time { return stamp }))
}

func TestLoadMissingReturnsFreshStore(t *testing.T) {
	f := newFile(t)
	store, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Fatalf("len = %d, want 0", store.Len())
	}
	if store.Schema.Version != catalog.SchemaVersion || !store.Schema.LastUpdated.Equal(stamp) {
		t.Fatalf("unexpected schema: %+v", store.Schema)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := newFile(t)
	store := catalog.NewStore()
	store.Put(&catalog.Entry{
		Key:     "archive-detour",
		Title:   "Detour",
		Sources: catalog.Sources{&catalog.ArchiveSource{SourceCommon: catalog.SourceCommon{ID: "detour", Title: "Detour"}}},
	})
	if err := f.Save(store); err != nil {
		t.Fatal(err)
	}
	if !store.Schema.LastUpdated.Equal(stamp) {
		t.Fatal("save should stamp lastUpdated")
	}

	raw, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["_schema"]; !ok {
		t.Fatal("saved document lacks _schema")
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := loaded.Get("archive-detour")
	if !ok || entry.Title != "Detour" || len(entry.Sources) != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestLoadCorruptIsError(t *testing.T) {
	f := newFile(t)
	if err := os.MkdirAll(filepath.Dir(f.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, content := range []string{"", "{\"archive-a\": ", "[]"} {
		if err := os.WriteFile(f.Path(), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := f.Load(); err == nil {
			t.Fatalf("expected error for content %q", content)
		}
	}
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	first := storefile.New(path)
	second := storefile.New(path)

	unlock, err := first.Lock()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := second.Lock(); !errors.Is(err, storefile.ErrLocked) {
		t.Fatalf("second lock err = %v, want ErrLocked", err)
	}
	if err := unlock(); err != nil {
		t.Fatal(err)
	}
	unlockAgain, err := second.Lock()
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	_ = unlockAgain()
}

func TestSnapshot(t *testing.T) {
	f := newFile(t)
	path, err := f.Snapshot()
	if err != nil || path != "" {
		t.Fatalf("snapshot of missing store = %q, %v", path, err)
	}

	if err := f.Save(catalog.NewStore()); err != nil {
		t.Fatal(err)
	}
	path, err = f.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if want := f.Path() + ".20260203T040506Z.bak"; path != want {
		t.Fatalf("snapshot path = %q, want %q", path, want)
	}
	orig, _ := os.ReadFile(f.Path())
	copied, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != string(copied) {
		t.Fatal("snapshot content differs")
	}
}
