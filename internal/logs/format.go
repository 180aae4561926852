package logs

import (
	"fmt"
	"strings"
	"time"

	"fitroom/internal/api"
)

// FormatEvent renders one daemon log event as a terminal line. Detail pairs
// are indented beneath the line.
func FormatEvent(evt api.LogEvent) string {
	ts := strings.TrimSpace(evt.Timestamp)
	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		ts = parsed.Local().Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(strings.TrimSpace(evt.Level))
	if level == "" {
		level = "INFO"
	}

	var parts []string
	if ts != "" {
		parts = append(parts, ts)
	}
	parts = append(parts, level)
	if component := strings.TrimSpace(evt.Component); component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	line := strings.Join(parts, " ")
	if subject := composeSubject(evt.GenerationID, evt.Variant); subject != "" {
		line += " " + subject
	}
	if message := strings.TrimSpace(evt.Message); message != "" {
		line += " – " + message
	}
	if len(evt.Details) == 0 {
		return line
	}

	builder := strings.Builder{}
	builder.WriteString(line)
	for _, detail := range evt.Details {
		if strings.TrimSpace(detail.Label) == "" || strings.TrimSpace(detail.Value) == "" {
			continue
		}
		builder.WriteString("\n    - ")
		builder.WriteString(detail.Label)
		builder.WriteString(": ")
		builder.WriteString(detail.Value)
	}
	return builder.String()
}

func composeSubject(generationID int64, variant string) string {
	variant = strings.TrimSpace(variant)
	switch {
	case generationID > 0 && variant != "":
		return fmt.Sprintf("Generation #%d (%s)", generationID, variant)
	case generationID > 0:
		return fmt.Sprintf("Generation #%d", generationID)
	default:
		return variant
	}
}
