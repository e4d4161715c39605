// Package ingest runs the batch loop: each scraped record is resolved against
// OMDB and merged into the catalog, with periodic checkpoints of the store
// and the failed-attempts file.
//
// Records are processed one at a time in scrape order. Per-record problems
// become counters in the Summary; only store I/O errors abort a run. A
// cancelled context stops the loop between records, writes a checkpoint and
// returns the context error.
package ingest
