package main

import (
	"strings"
	"testing"

	"fitroom/internal/api"
)

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"pending":    "Pending",
		"processing": "Processing",
		"some_state": "Some State",
		"":           "",
	}
	for in, want := range cases {
		if got := formatStatusLabel(in); got != want {
			t.Fatalf("formatStatusLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatRating(0); got != "-" {
		t.Fatalf("formatRating(0) = %q", got)
	}
	if got := formatRating(4); got != "4/5" {
		t.Fatalf("formatRating(4) = %q", got)
	}
	if got := formatCost(1); got != "1.00" {
		t.Fatalf("formatCost(1) = %q", got)
	}
	if got := formatSeconds(0); got != "-" {
		t.Fatalf("formatSeconds(0) = %q", got)
	}
	if got := formatSeconds(2.5); got != "2.5s" {
		t.Fatalf("formatSeconds(2.5) = %q", got)
	}
	if got := orDash(""); got != "-" {
		t.Fatalf(`orDash("") = %q`, got)
	}
	if got := formatDisplayTime("2026-01-02T15:04:05Z"); got != "2026-01-02 15:04" {
		t.Fatalf("formatDisplayTime = %q", got)
	}
	if got := formatDisplayTime("not-a-time"); got != "not-a-time" {
		t.Fatalf("formatDisplayTime passthrough = %q", got)
	}
}

func TestBuildGenerationRowsSortsNewestFirst(t *testing.T) {
	items := []api.Generation{
		{ID: 1, Variant: "local-free", Status: "completed", CreatedAt: "2026-01-01T10:00:00Z"},
		{ID: 2, Variant: "cloud-free", Status: "pending", CreatedAt: "2026-01-02T10:00:00Z"},
		{ID: 3, Variant: "cloud-premium", Status: "pending", CreatedAt: "2026-01-02T10:00:00Z"},
	}
	rows := buildGenerationRows(items)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	got := []string{rows[0][0], rows[1][0], rows[2][0]}
	want := []string{"3", "2", "1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row order = %v, want %v", got, want)
		}
	}
}

func TestBuildStatusRowsSortsKeys(t *testing.T) {
	rows := buildStatusRows(map[string]int{"pending": 2, "completed": 1})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Completed" || rows[0][1] != "1" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1][0] != "Pending" || rows[1][1] != "2" {
		t.Fatalf("unexpected second row %v", rows[1])
	}
}

func TestGenerationDetailLines(t *testing.T) {
	item := api.Generation{
		ID:           9,
		Status:       "failed",
		Variant:      "local-free",
		ErrorMessage: "inference backend unreachable",
		CreatedAt:    "2026-01-02T15:04:05Z",
	}
	lines := generationDetailLines(item)
	if lines[0] != "Generation #9" {
		t.Fatalf("unexpected heading %q", lines[0])
	}
	joined := strings.Join(lines, "\n")
	requireContains(t, joined, "Failed")
	requireContains(t, joined, "inference backend unreachable")
	requireNotContains(t, joined, "Result image")
}
