// Package omdbcache keeps OMDB responses in a local SQLite database so
// re-running ingest over an unchanged scrape does not spend API quota.
//
// Cache wraps another omdb.API and implements the same interface. Search
// results are keyed by the case-folded query and year; details by IMDB id.
// Entries older than the TTL are refetched. Errors from the wrapped client
// are never cached, and cache read or write failures only log a warning.
package omdbcache
