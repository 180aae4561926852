// Package main hosts the fitroom CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into daemon
// API calls, ledger maintenance operations, log tailing, try-on submissions,
// and configuration scaffolding. It centralizes configuration resolution and
// daemon discovery so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives in
// reusable workflow components.
package main
