// Package daemon coordinates the long-running fitroom services: the workflow
// manager, the cleanup monitor, and the HTTP API server. It enforces
// single-instance execution through a lock file.
//
// The HTTP API is the daemon's only control plane; the CLI talks to it with
// internal/apiclient and falls back to direct ledger access when the daemon
// is not running.
package daemon
