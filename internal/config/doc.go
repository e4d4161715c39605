// Package config loads, normalizes, and validates cinedex configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY and YOUTUBE_API_KEY. The Config type centralizes the store
// location, provider endpoints, matching thresholds and logging knobs so every
// command discovers them in one pass.
package config
