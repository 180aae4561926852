// Package ledger persists try-on generations and the variant registry in
// SQLite and enforces their lifecycle rules.
//
// The Store manages database connections, schema initialization with the
// pre-seeded variant set, status transitions, rating updates, variant timing
// statistics, and the automatic blacklist policy. Every generation owns its
// image files; OwnedFiles lists them so callers can delete the files together
// with the record.
//
// Status moves strictly pending -> processing -> completed or failed.
// Transitions are guarded UPDATE statements, so concurrent workers can never
// move a record twice; violations surface as ErrInvalidTransition. Variant
// timing updates run in the same transaction as the completion that produced
// them, which keeps the moving average and the blacklist flags consistent.
//
// Treat this package as the single source of truth for ledger semantics; when
// you add statuses or columns, update schema.sql and bump schemaVersion.
package ledger
