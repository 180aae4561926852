// Package preflight provides readiness checks for the directories and the
// inference backend that fitroom depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll once at startup and logs every result. A failed
//     check is a warning, not a fatal error; the backend may come up later.
//   - The CLI "fitroom status" command uses the same checks to display
//     service health.
package preflight
