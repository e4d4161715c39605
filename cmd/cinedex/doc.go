// Package main hosts the cinedex CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into batch runs against
// the catalog store: provider ingest, enrichment of temporary entries,
// duplicate merging, curation overrides, and read-only reporting. It
// centralizes configuration resolution, logger setup, and store locking so
// subcommands only describe what they do with the catalog.
//
// Keep this package lean: new behavior belongs in the internal packages
// first and is surfaced here through a command or flag.
package main
