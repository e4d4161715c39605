package archive_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinedex/internal/catalog"
	"cinedex/internal/scrape"
	"cinedex/internal/scrape/archive"
	"cinedex/internal/testsupport"
)

var captured = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func newClient(t *testing.T, baseURL string, collections ...string) *archive.Client {
	t.Helper()
	clock := testsupport.NewFakeClock(captured)
	fetcher := scrape.NewFetcher("archive", scrape.WithClock(clock), scrape.WithMinInterval(0))
	client, err := archive.New(baseURL, collections,
		archive.WithFetcher(fetcher),
		archive.WithPageSize(100),
		archive.WithClock(clock.Now),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestScrapeFollowsCursorAndCoercesFields(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/search/v1/scrape" {
			http.NotFound(w, r)
			return
		}
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			_, _ = w.Write([]byte(`{"items":[
				{"identifier":"horror_express","title":"Horror Express","year":"1972","language":["English","Spanish"],"description":["A train.","A monster."]},
				{"identifier":"detour_1945","title":["Detour"],"year":1945,"date":"1945-11-30T00:00:00Z"}
			],"count":2,"cursor":"page2","total":3}`))
		case "page2":
			_, _ = w.Write([]byte(`{"items":[
				{"identifier":"nosferatu","title":"Nosferatu","date":"1922-03-04"},
				{"title":"no identifier"}
			],"count":2,"total":3}`))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	records, err := newClient(t, server.URL, "feature_films").Scrape(context.Background(), 0)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if len(queries) != 2 {
		t.Fatalf("requests = %d, want 2", len(queries))
	}
	if !strings.Contains(queries[0], "collection%3A%28feature_films%29") || !strings.Contains(queries[0], "count=100") {
		t.Fatalf("unexpected query %q", queries[0])
	}

	first := records[0].Source.(*catalog.ArchiveSource)
	if first.Year != 1972 || first.Language != "en,es" || first.Description != "A train.\nA monster." {
		t.Fatalf("unexpected first source: %+v", first)
	}
	if first.Collection != "feature_films" || records[0].Channel != "feature_films" {
		t.Fatalf("collection not recorded: %+v", records[0])
	}
	if !first.AddedAt.Equal(captured) {
		t.Fatalf("addedAt = %v", first.AddedAt)
	}
	if records[1].Title() != "Detour" || records[1].Year() != 1945 {
		t.Fatalf("unexpected second record: %q %d", records[1].Title(), records[1].Year())
	}
	if records[2].Year() != 1922 {
		t.Fatalf("year from date = %d, want 1922", records[2].Year())
	}
}

func TestScrapeRespectsLimitAcrossCollections(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		collection := strings.TrimSuffix(strings.TrimPrefix(r.URL.Query().Get("q"), "collection:("), ") AND mediatype:(movies)")
		items := []map[string]any{
			{"identifier": collection + "_1", "title": "One"},
			{"identifier": collection + "_2", "title": "Two"},
			{"identifier": "shared", "title": "Shared"},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "cursor": ""})
	}))
	defer server.Close()

	client := newClient(t, server.URL, "film_noir", "silent_films")
	records, err := client.Scrape(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.Key().ID)
	}
	want := []string{"film_noir_1", "film_noir_2", "shared", "silent_films_1"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	if requests != 2 {
		t.Fatalf("requests = %d, want 2", requests)
	}
}

func TestScrapeRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"identifier":"a","title":"A"}]}`))
	}))
	defer server.Close()

	clock := testsupport.NewFakeClock(captured)
	fetcher := scrape.NewFetcher("archive", scrape.WithClock(clock), scrape.WithMinInterval(0))
	client, err := archive.New(server.URL, []string{"feature_films"}, archive.WithFetcher(fetcher))
	if err != nil {
		t.Fatal(err)
	}
	records, err := client.Scrape(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || calls != 2 {
		t.Fatalf("records=%d calls=%d", len(records), calls)
	}
	if got := clock.Sleeps(); len(got) != 1 || got[0] != time.Second {
		t.Fatalf("sleeps = %v, want [1s]", got)
	}
}

func TestScrapeClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, "feature_films").Scrape(context.Background(), 0)
	if err == nil || !scrape.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("err = %v, want 400 status error", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := archive.New("", []string{"x"}); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := archive.New("https://archive.org", nil); err == nil {
		t.Fatal("expected error without collections")
	}
}
