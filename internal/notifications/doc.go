// Package notifications announces batch run outcomes via ntfy.
//
// Ingest, enrich and dedup runs usually execute unattended from a scheduler,
// so their results are published to the ntfy topic configured in
// config.toml. Without a topic the service is a no-op.
package notifications
