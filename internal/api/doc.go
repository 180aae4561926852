// Package api defines wire-format types, converters, and the application
// service shared by the HTTP layer and the CLI's direct-store fallback. It
// translates internal ledger models into transport-friendly DTOs so consumers
// can render them without coupling to internal types.
//
// # Key Types
//
// Generation: transport representation of a ledger record with image URLs,
// rating, cost, and timing.
//
// Variant: transport representation of a registry entry; the public listing
// omits blacklist internals while the administrative view carries them.
//
// Service: the one place where uploads are normalized and written to disk,
// records are created and deleted together with their owned files, and
// ratings are applied. HTTP handlers and CLI commands both call it so the
// two entry points cannot drift.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums are exposed as lowercase
// strings. Timestamps use RFC3339 with milliseconds. Image bytes never pass
// through DTOs; records carry /api/generations/{id}/images/{kind} URLs and
// the daemon serves the files directly.
package api
