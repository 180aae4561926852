package logging

import (
	"log/slog"
	"strings"
)

// ComponentLevel looks up the override level configured for a component.
// Matching is case-insensitive; the second return value reports whether an
// override applies.
func ComponentLevel(overrides map[string]string, component string) (slog.Level, bool) {
	if len(overrides) == 0 {
		return 0, false
	}
	component = strings.ToLower(strings.TrimSpace(component))
	if component == "" {
		return 0, false
	}
	for key, value := range overrides {
		if strings.ToLower(strings.TrimSpace(key)) == component {
			return parseLevel(value), true
		}
	}
	return 0, false
}

// NewComponentLoggerWithOverrides tags a logger with a component attribute and
// applies the configured per-component level override when one exists.
func NewComponentLoggerWithOverrides(logger *slog.Logger, component string, overrides map[string]string) *slog.Logger {
	out := NewComponentLogger(logger, component)
	if level, ok := ComponentLevel(overrides, component); ok {
		out = WithLevelOverride(out, level)
	}
	return out
}
