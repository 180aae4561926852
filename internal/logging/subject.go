package logging

import "strings"

// FormatSubject builds the generation/variant subject string used in console output.
func FormatSubject(generationID, variant string) string {
	generationID = strings.TrimSpace(generationID)
	variant = strings.TrimSpace(variant)
	switch {
	case generationID != "" && variant != "":
		return "Generation #" + generationID + " (" + variant + ")"
	case generationID != "":
		return "Generation #" + generationID
	case variant != "":
		return variant
	default:
		return ""
	}
}
