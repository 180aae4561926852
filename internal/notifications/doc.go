// Package notifications delivers workflow events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Enumerated event types cover the generation milestones and variant
// blacklisting so the workflow can emit consistent, user-friendly messages
// without duplicating HTTP glue. Per-category toggles in the configuration
// suppress events the user does not care about.
//
// Extend this package if you need alternative transports; all workflow code
// depends only on the simple Service interface.
package notifications
