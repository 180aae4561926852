package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fitroom/internal/api"
)

func buildStatusRows(counts map[string]int) [][]string {
	if len(counts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", counts[key])})
	}
	return rows
}

func buildGenerationRows(items []api.Generation) [][]string {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]api.Generation, len(items))
	copy(sorted, items)

	sort.Slice(sorted, func(i, j int) bool {
		ti := parseRecordTime(sorted[i].CreatedAt)
		tj := parseRecordTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})

	rows := make([][]string, 0, len(sorted))
	for _, item := range sorted {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ID),
			orDash(item.PersonName),
			orDash(item.GarmentName),
			item.Variant,
			formatStatusLabel(item.Status),
			formatRating(item.Rating),
			formatCost(item.Cost),
			formatDisplayTime(item.CreatedAt),
		})
	}
	return rows
}

func buildVariantRows(items []api.Variant) [][]string {
	if len(items) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		blacklisted := "no"
		if item.IsBlacklisted {
			blacklisted = "yes"
			if reason := strings.TrimSpace(item.BlacklistReason); reason != "" {
				blacklisted = fmt.Sprintf("yes (%s)", reason)
			}
		}
		rows = append(rows, []string{
			item.Name,
			item.DisplayName,
			yesNo(item.IsPaid),
			formatCost(item.CostPerGeneration),
			formatSeconds(item.AvgTimeSeconds),
			formatSeconds(item.MaxTimeSeconds),
			yesNo(item.IsEnabled),
			blacklisted,
		})
	}
	return rows
}

func generationDetailLines(item api.Generation) []string {
	lines := []string{fmt.Sprintf("Generation #%d", item.ID)}
	appendDetail := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, fmt.Sprintf("  %-15s %s", label+":", value))
	}

	appendDetail("Status", formatStatusLabel(item.Status))
	appendDetail("Person", orDash(item.PersonName))
	appendDetail("Garment", orDash(item.GarmentName))
	appendDetail("Variant", item.Variant)
	appendDetail("Rating", formatRating(item.Rating))
	appendDetail("Cost", formatCost(item.Cost))
	if item.GenerationTimeSeconds > 0 {
		appendDetail("Elapsed", formatSeconds(item.GenerationTimeSeconds))
	}
	appendDetail("Created", formatDisplayTime(item.CreatedAt))
	appendDetail("Updated", formatDisplayTime(item.UpdatedAt))
	appendDetail("Person image", item.PersonImageURL)
	appendDetail("Garment image", item.GarmentImageURL)
	appendDetail("Result image", item.ResultImageURL)
	appendDetail("Error", item.ErrorMessage)
	return lines
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func parseRecordTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

// formatRating renders an assigned score; zero means not yet rated.
func formatRating(rating int) string {
	if rating <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d/5", rating)
}

func formatCost(cost float64) string {
	return fmt.Sprintf("%.2f", cost)
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fs", seconds)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
