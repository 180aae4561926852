// Package workflow advances pending generations through the synthesis
// backend.
//
// The Manager runs a small pool of workers. Each worker claims the oldest
// pending record, reads the stored input images, calls the backend under the
// variant's time budget, writes the result image, and records the outcome.
// Completion feeds the variant's moving average; budget overruns and backend
// failures mark the record failed with a reason. The manager also aggregates
// ledger stats for the status endpoint and emits notifications for completed
// and failed generations and for variants pulled from rotation.
//
// One worker owns one record end-to-end; concurrency across records comes
// from running several workers, never from splitting a single generation.
package workflow
