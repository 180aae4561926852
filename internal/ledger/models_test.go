package ledger_test

import (
	"testing"

	"fitroom/internal/ledger"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  ledger.Status
		ok    bool
	}{
		{"pending", ledger.StatusPending, true},
		{"PROCESSING", ledger.StatusProcessing, true},
		{"  completed  ", ledger.StatusCompleted, true},
		{"failed", ledger.StatusFailed, true},
		{"done", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ledger.ParseStatus(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to ledger.Status }{
		{ledger.StatusPending, ledger.StatusProcessing},
		{ledger.StatusProcessing, ledger.StatusCompleted},
		{ledger.StatusProcessing, ledger.StatusFailed},
	}
	for _, tt := range allowed {
		if !ledger.CanTransition(tt.from, tt.to) {
			t.Fatalf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}

	forbidden := []struct{ from, to ledger.Status }{
		{ledger.StatusPending, ledger.StatusCompleted},
		{ledger.StatusPending, ledger.StatusFailed},
		{ledger.StatusCompleted, ledger.StatusProcessing},
		{ledger.StatusFailed, ledger.StatusPending},
		{ledger.StatusCompleted, ledger.StatusFailed},
	}
	for _, tt := range forbidden {
		if ledger.CanTransition(tt.from, tt.to) {
			t.Fatalf("expected %s -> %s to be rejected", tt.from, tt.to)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if ledger.StatusPending.IsTerminal() || ledger.StatusProcessing.IsTerminal() {
		t.Fatal("pending and processing must not be terminal")
	}
	if !ledger.StatusCompleted.IsTerminal() || !ledger.StatusFailed.IsTerminal() {
		t.Fatal("completed and failed must be terminal")
	}
}

func TestValidRating(t *testing.T) {
	for _, rating := range []int{0, 1, 5} {
		if !ledger.ValidRating(rating) {
			t.Fatalf("expected %d to be valid", rating)
		}
	}
	for _, rating := range []int{-1, 6, 100} {
		if ledger.ValidRating(rating) {
			t.Fatalf("expected %d to be invalid", rating)
		}
	}
}

func TestVariantAvailable(t *testing.T) {
	v := ledger.Variant{IsEnabled: true}
	if !v.Available() {
		t.Fatal("enabled, unblacklisted variant must be available")
	}
	v.IsBlacklisted = true
	if v.Available() {
		t.Fatal("blacklisted variant must not be available")
	}
	v = ledger.Variant{IsEnabled: false}
	if v.Available() {
		t.Fatal("disabled variant must not be available")
	}
}
