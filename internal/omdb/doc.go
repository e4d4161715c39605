// Package omdb provides a rate-limited client for the Open Movie Database.
//
// Search returns candidate films for a cleaned title (optionally filtered by
// year); FetchDetails returns full metadata for an IMDB id. OMDB's own
// "Movie not found!" answer is reported as an empty result rather than an
// error. Transient failures are retried with exponential backoff and HTTP 429
// responses pause for a fixed delay; once retries are exhausted the error
// wraps ErrUnavailable so callers can tell infrastructure trouble apart from
// a genuine miss.
package omdb
