// Package identity resolves scraped records to IMDB ids.
//
// A Resolver normalizes the scraped title, queries OMDB, scores the
// candidates and either returns a match with its metadata or records a
// failed attempt. Recorded failures suppress further OMDB calls for the same
// key until a forced retry, so known-bad titles do not spend the rate budget
// on every incremental scrape.
//
// OMDB infrastructure errors produce OutcomeFailed and are never recorded
// as attempts: a transient outage is not evidence that a title is unmatched.
package identity
