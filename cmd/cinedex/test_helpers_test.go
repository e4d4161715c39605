package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinedex/internal/catalog"
	"cinedex/internal/config"
	"cinedex/internal/omdb"
	"cinedex/internal/storefile"
	"cinedex/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	omdbCalls  int
}

var testMovies = map[string]omdb.Details{
	"horror express": {IMDBID: "tt0068713", Title: "Horror Express", Year: "1972", Director: "Eugenio Martín", Runtime: "88 min"},
	"detour":         {IMDBID: "tt0037638", Title: "Detour", Year: "1945", Director: "Edgar G. Ulmer", Plot: "N/A"},
}

func setupCLITestEnv(t *testing.T, archiveItems []map[string]any) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OMDB_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")

	env := &cliTestEnv{}
	omdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.omdbCalls++
		query := r.URL.Query()
		if query.Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if id := query.Get("i"); id != "" {
			for _, d := range testMovies {
				if d.IMDBID == id {
					_ = json.NewEncoder(w).Encode(d)
					return
				}
			}
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
			return
		}
		d, ok := testMovies[strings.ToLower(query.Get("s"))]
		if !ok {
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Response": "True",
			"Search":   []omdb.Candidate{{Title: d.Title, Year: d.Year, IMDBID: d.IMDBID, Type: "movie"}},
		})
	}))
	t.Cleanup(omdbServer.Close)

	archiveServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": archiveItems,
			"count": len(archiveItems),
			"total": len(archiveItems),
		})
	}))
	t.Cleanup(archiveServer.Close)

	env.cfg = testsupport.NewConfig(t,
		testsupport.WithOMDB(omdbServer.URL+"/", "test-key"),
		testsupport.WithArchive(archiveServer.URL, "feature_films"),
	)
	env.configPath = filepath.Join(testsupport.BaseDir(env.cfg), "cinedex.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (e *cliTestEnv) loadStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := storefile.New(e.cfg.Paths.StoreFile).Load()
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return store
}

func (e *cliTestEnv) saveStore(t *testing.T, store *catalog.Store) {
	t.Helper()
	if err := storefile.New(e.cfg.Paths.StoreFile).Save(store); err != nil {
		t.Fatalf("save store: %v", err)
	}
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func archiveItem(id, title string, year any) map[string]any {
	return map[string]any{"identifier": id, "title": title, "year": year, "description": []string{"a", "b"}}
}
