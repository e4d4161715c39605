// Package preflight provides readiness checks for the filesystem paths and
// remote services that cinedex depends on.
//
// The CLI "cinedex preflight" command runs RunAll and renders one row per
// check. Provider checks are gated by configuration: an unconfigured YouTube
// section is skipped rather than reported as a failure.
package preflight
