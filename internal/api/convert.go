package api

import (
	"fmt"

	"fitroom/internal/ledger"
	"fitroom/internal/workflow"
)

// FromGeneration converts a ledger record to its API representation.
func FromGeneration(gen *ledger.Generation) Generation {
	if gen == nil {
		return Generation{}
	}

	dto := Generation{
		ID:                    gen.ID,
		PersonName:            gen.PersonName,
		GarmentName:           gen.GarmentName,
		Variant:               gen.Variant,
		Status:                string(gen.Status),
		Rating:                gen.Rating,
		Cost:                  gen.Cost,
		GenerationTimeSeconds: gen.GenerationTimeSeconds,
		ErrorMessage:          gen.ErrorMessage,
		PersonImageURL:        imageURL(gen.ID, "person"),
		GarmentImageURL:       imageURL(gen.ID, "garment"),
	}
	if gen.ResultImagePath != "" {
		dto.ResultImageURL = imageURL(gen.ID, "result")
	}
	if !gen.CreatedAt.IsZero() {
		dto.CreatedAt = gen.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !gen.UpdatedAt.IsZero() {
		dto.UpdatedAt = gen.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromGenerations converts a slice of ledger records into API DTOs.
func FromGenerations(gens []*ledger.Generation) []Generation {
	if len(gens) == 0 {
		return nil
	}
	out := make([]Generation, 0, len(gens))
	for _, gen := range gens {
		out = append(out, FromGeneration(gen))
	}
	return out
}

// FromVariant converts a registry entry to its API representation. The
// administrative view keeps blacklist internals; the public listing only ever
// sees available variants, for which those fields marshal away.
func FromVariant(v *ledger.Variant) Variant {
	if v == nil {
		return Variant{}
	}
	return Variant{
		Name:              v.Name,
		DisplayName:       v.DisplayName,
		IsPaid:            v.IsPaid,
		CostPerGeneration: v.CostPerGeneration,
		AvgTimeSeconds:    v.AvgTimeSeconds,
		MaxTimeSeconds:    v.MaxTimeSeconds,
		IsEnabled:         v.IsEnabled,
		IsBlacklisted:     v.IsBlacklisted,
		BlacklistReason:   v.BlacklistReason,
	}
}

// FromVariants converts a slice of registry entries into API DTOs.
func FromVariants(variants []*ledger.Variant) []Variant {
	if len(variants) == 0 {
		return nil
	}
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		out = append(out, FromVariant(v))
	}
	return out
}

// FromStats converts ledger statistics into the API payload.
func FromStats(stats ledger.Stats) StatsResponse {
	counts := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		counts[string(status)] = count
	}
	return StatsResponse{
		Counts:        counts,
		Total:         stats.Total,
		CompletedCost: stats.CompletedCost,
	}
}

// FromWorkflowSummary converts a manager status snapshot into the API payload.
func FromWorkflowSummary(summary workflow.StatusSummary) WorkflowStatus {
	counts := make(map[string]int, len(summary.ByStatus))
	for status, count := range summary.ByStatus {
		counts[string(status)] = count
	}
	return WorkflowStatus{
		Running:       summary.Running,
		Workers:       summary.Workers,
		Counts:        counts,
		Total:         summary.Total,
		CompletedCost: summary.CompletedCost,
		LastError:     summary.LastError,
	}
}

func imageURL(id int64, kind string) string {
	return fmt.Sprintf("/api/generations/%d/images/%s", id, kind)
}
