// Package cleanup removes orphaned image files from the uploads and results
// directories.
//
// A file is an orphan when no ledger row references it. Orphans appear when
// the daemon dies between writing an upload and inserting its row, or when a
// result download outlives a deleted generation. Files younger than the
// configured minimum age are always spared because they may belong to a row
// that is still being written.
//
// The daemon runs a background Monitor on an interval; the CLI "fitroom
// sweep" command runs a single pass through the same Sweeper.
package cleanup
