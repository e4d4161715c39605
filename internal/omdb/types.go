package omdb

import (
	"context"
	"errors"
	"strings"

	"cinedex/internal/titles"
)

var (
	// ErrNotFound reports an IMDB id OMDB does not know.
	ErrNotFound = errors.New("omdb: title not found")
	// ErrUnavailable wraps failures that persisted after every retry.
	ErrUnavailable = errors.New("omdb: service unavailable")
	// ErrRejected reports a request OMDB refused (bad key, quota exhausted).
	ErrRejected = errors.New("omdb: request rejected")
)

// API is the subset of OMDB used by identity resolution.
type API interface {
	Search(ctx context.Context, title string, year int) ([]Candidate, error)
	FetchDetails(ctx context.Context, imdbID string) (*Details, error)
}

// Candidate is a single OMDB search hit.
type Candidate struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDBID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// ReleaseYear parses Year, which OMDB reports as "1972", "1999–2004" or "N/A".
func (c Candidate) ReleaseYear() (int, bool) {
	return titles.ParseYear(strings.TrimSpace(c.Year))
}

// Details is the OMDB record for one title.
type Details struct {
	IMDBID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	IMDBVotes  string `json:"imdbVotes"`
	Type       string `json:"Type"`
}

// ReleaseYear parses the details year.
func (d *Details) ReleaseYear() (int, bool) {
	if d == nil {
		return 0, false
	}
	return titles.ParseYear(strings.TrimSpace(d.Year))
}

type envelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (e envelope) ok() bool {
	return !strings.EqualFold(strings.TrimSpace(e.Response), "false")
}

func (e envelope) notFound() bool {
	msg := strings.ToLower(strings.TrimSpace(e.Error))
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "incorrect imdb id") ||
		strings.Contains(msg, "error getting data")
}

type searchResponse struct {
	envelope
	Search       []Candidate `json:"Search"`
	TotalResults string      `json:"totalResults"`
}

type detailsResponse struct {
	envelope
	Details
}
