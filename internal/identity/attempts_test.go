package identity_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cinedex/internal/identity"
)

func TestAttemptLogMissingFileIsEmpty(t *testing.T) {
	log, err := identity.LoadAttempts(filepath.Join(t.TempDir(), "failed-omdb-matches.json"))
	if err != nil {
		t.Fatal(err)
	}
	if log.Len() != 0 || log.Changed() {
		t.Fatalf("expected empty unchanged log, got len=%d changed=%v", log.Len(), log.Changed())
	}
}

func TestAttemptLogSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed-omdb-matches.json")
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	log := identity.NewAttemptLog(path)
	log.Record(identity.Attempt{
		Identifier:    "archive-lost",
		OriginalTitle: "Lost Reels",
		Attempts:      []identity.Query{{Query: "Lost Reels", Year: 1931}},
		FailedAt:      first,
		LastAttempt:   first,
		Reason:        "no OMDB results",
	})
	log.Record(identity.Attempt{
		Identifier:  "archive-lost",
		Attempts:    []identity.Query{{Query: "Lost Reels", Year: 1931}, {Query: "Lost Reels 1931"}},
		LastAttempt: later,
		Reason:      "still nothing",
	})
	if !log.Changed() {
		t.Fatal("expected changed log")
	}
	if err := log.Save(); err != nil {
		t.Fatal(err)
	}
	if log.Changed() {
		t.Fatal("save should reset changed flag")
	}

	loaded, err := identity.LoadAttempts(path)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := loaded.Get("archive-lost")
	if !ok {
		t.Fatal("attempt not persisted")
	}
	if !got.FailedAt.Equal(first) || !got.LastAttempt.Equal(later) {
		t.Fatalf("timestamps: failedAt=%v lastAttempt=%v", got.FailedAt, got.LastAttempt)
	}
	if len(got.Attempts) != 2 || got.Reason != "still nothing" || got.OriginalTitle != "Lost Reels" {
		t.Fatalf("unexpected merged attempt: %+v", got)
	}
}

func TestAttemptLogEncodesEmptyQueryList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed-omdb-matches.json")
	log := identity.NewAttemptLog(path)
	log.Record(identity.Attempt{
		Identifier:    "tt0133093",
		OriginalTitle: "The Matrix",
		Reason:        "rejected by curator",
	})
	if err := log.Save(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	queries, ok := records[0]["attempts"].([]any)
	if !ok {
		t.Fatalf("attempts should encode as an array, got %#v", records[0]["attempts"])
	}
	if len(queries) != 0 {
		t.Fatalf("expected empty attempts, got %v", queries)
	}
}

func TestAttemptLogRekeyAndRemove(t *testing.T) {
	log := identity.NewAttemptLog("")
	log.Record(identity.Attempt{Identifier: "archive-a", OriginalTitle: "A", Attempts: []identity.Query{{Query: "A"}}})
	log.Record(identity.Attempt{Identifier: "tt0000001", OriginalTitle: "A", Attempts: []identity.Query{{Query: "A (1950)"}}})

	log.Rekey("archive-a", "tt0000001")
	if log.Suppressed("archive-a") {
		t.Fatal("old key must not be orphaned")
	}
	got, ok := log.Get("tt0000001")
	if !ok || len(got.Attempts) != 2 {
		t.Fatalf("expected merged attempts under new key, got %+v", got)
	}
	if log.Len() != 1 {
		t.Fatalf("len = %d, want 1", log.Len())
	}

	if !log.Remove("tt0000001") || log.Remove("tt0000001") {
		t.Fatal("remove should report presence exactly once")
	}
	if log.Len() != 0 {
		t.Fatal("expected empty log")
	}
}

func TestAttemptLogCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := identity.LoadAttempts(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAttemptLogSaveWithoutPath(t *testing.T) {
	if err := identity.NewAttemptLog("").Save(); err == nil {
		t.Fatal("expected error when saving without a path")
	}
}
