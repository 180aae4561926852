// Package textutil provides text processing utilities for filename
// sanitization and display-name derivation.
//
// The primary use cases are:
//   - Sanitizing user-supplied labels before they become part of stored
//     image file names
//   - Deriving human-readable display names from upload filenames and
//     kebab-case variant keys
//
// Derivation strips extensions and separators, collapses whitespace, and
// applies Unicode title casing so "red_dress.png" and "cloud-premium"
// render consistently across the API and CLI.
package textutil
