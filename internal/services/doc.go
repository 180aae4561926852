// Package services provides shared helpers for the components that talk to
// external collaborators: sentinel error markers for classification, error
// wrapping with component context, and context keys that carry correlation
// metadata between the workflow, the inference gateway, and logging.
package services
