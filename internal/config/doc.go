// Package config loads, normalizes, and validates fitroom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FITROOM_API_TOKEN. The Config type centralizes every knob the daemon and CLI
// need, allowing data/upload/result directories and the inference backend
// address to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
