// Package logs drives log viewing for the CLI.
//
// It prefers the daemon's structured event stream, rendering each event as a
// terminal line, and falls back to tailing the current log file with bounded
// memory when no daemon is reachable. Event filters depend on stream
// metadata, so they are only honored in API mode.
package logs
