// Package ratelimit spaces and retries outbound API calls.
//
// A Limiter enforces a minimum interval between requests and is safe to share
// across goroutines. Policy drives exponential backoff for transient failures
// and honours fixed server-imposed delays. Both take a Clock so tests can run
// without sleeping.
package ratelimit
