package omdbcache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cinedex/internal/omdb"
	"cinedex/internal/omdbcache"
)

type countingAPI struct {
	searches int
	details  int
	fail     error
}

func (f *countingAPI) Search(_ context.Context, title string, year int) ([]omdb.Candidate, error) {
	f.searches++
	if f.fail != nil {
		return nil, f.fail
	}
	return []omdb.Candidate{{Title: title, Year: "1945", IMDBID: "tt0037638", Type: "movie"}}, nil
}

func (f *countingAPI) FetchDetails(_ context.Context, imdbID string) (*omdb.Details, error) {
	f.details++
	if f.fail != nil {
		return nil, f.fail
	}
	return &omdb.Details{IMDBID: imdbID, Title: "Detour", Year: "1945"}, nil
}

func openCache(t *testing.T, inner omdb.API, now *time.Time) *omdbcache.Cache {
	t.Helper()
	cache, err := omdbcache.Open(filepath.Join(t.TempDir(), "omdb.db"), inner,
		omdbcache.WithTTL(time.Hour),
		omdbcache.WithNow(func() time.Time { return *now }),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestSearchIsCachedByFoldedQuery(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inner := &countingAPI{}
	cache := openCache(t, inner, &now)
	ctx := context.Background()

	first, err := cache.Search(ctx, "Detour", 1945)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cache.Search(ctx, "  DETOUR ", 1945)
	if err != nil {
		t.Fatal(err)
	}
	if inner.searches != 1 {
		t.Fatalf("expected one upstream search, got %d", inner.searches)
	}
	if len(second) != 1 || second[0].IMDBID != first[0].IMDBID {
		t.Fatalf("cached result mismatch: %#v vs %#v", second, first)
	}

	if _, err := cache.Search(ctx, "Detour", 0); err != nil {
		t.Fatal(err)
	}
	if inner.searches != 2 {
		t.Fatalf("different year should miss the cache, got %d searches", inner.searches)
	}
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inner := &countingAPI{}
	cache := openCache(t, inner, &now)
	ctx := context.Background()

	if _, err := cache.FetchDetails(ctx, "tt0037638"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Minute)
	if _, err := cache.FetchDetails(ctx, "tt0037638"); err != nil {
		t.Fatal(err)
	}
	if inner.details != 1 {
		t.Fatalf("fresh entry should be served from cache, got %d fetches", inner.details)
	}

	stats, err := cache.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Details != 1 || stats.Expired != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	now = now.Add(2 * time.Hour)
	if _, err := cache.FetchDetails(ctx, "tt0037638"); err != nil {
		t.Fatal(err)
	}
	if inner.details != 2 {
		t.Fatalf("stale entry should be refetched, got %d fetches", inner.details)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inner := &countingAPI{fail: omdb.ErrUnavailable}
	cache := openCache(t, inner, &now)
	ctx := context.Background()

	if _, err := cache.Search(ctx, "Detour", 0); !errors.Is(err, omdb.ErrUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	inner.fail = nil
	if _, err := cache.Search(ctx, "Detour", 0); err != nil {
		t.Fatal(err)
	}
	if inner.searches != 2 {
		t.Fatalf("failed lookups must not be cached, got %d searches", inner.searches)
	}
}

func TestPruneRemovesExpiredRows(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := openCache(t, &countingAPI{}, &now)
	ctx := context.Background()

	if _, err := cache.Search(ctx, "Detour", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.FetchDetails(ctx, "tt0037638"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(3 * time.Hour)
	removed, err := cache.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows pruned, got %d", removed)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "omdb.db")
	inner := &countingAPI{}
	clock := func() time.Time { return now }

	cache, err := omdbcache.Open(path, inner, omdbcache.WithNow(clock))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Search(context.Background(), "Detour", 0); err != nil {
		t.Fatal(err)
	}
	if err := cache.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := omdbcache.Open(path, inner, omdbcache.WithNow(clock))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Search(context.Background(), "Detour", 0); err != nil {
		t.Fatal(err)
	}
	if inner.searches != 1 {
		t.Fatalf("expected cached entry after reopen, got %d searches", inner.searches)
	}
}

func TestOpenRequiresInner(t *testing.T) {
	if _, err := omdbcache.Open(filepath.Join(t.TempDir(), "x.db"), nil); err == nil {
		t.Fatal("expected error without wrapped client")
	}
}
