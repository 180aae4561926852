package ledger

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a generation record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Rating bounds accepted by SetRating.
const (
	RatingMin = 0
	RatingMax = 5
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// statusTransitions is the closed transition table. A status missing from the
// map (or an empty target set) is terminal.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether the status machine allows moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave the status.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// ValidRating reports whether a rating value is inside the accepted range.
func ValidRating(rating int) bool {
	return rating >= RatingMin && rating <= RatingMax
}

// Generation is one try-on attempt persisted in SQLite.
type Generation struct {
	ID                    int64
	PersonName            string
	PersonImagePath       string
	GarmentName           string
	GarmentImagePath      string
	ResultImagePath       string
	Variant               string
	GenerationTimeSeconds float64
	Rating                int
	Cost                  float64
	Status                Status
	ErrorMessage          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewGeneration carries the fields required to create a pending record. The
// image paths must already point at stored, normalized files.
type NewGeneration struct {
	PersonName       string
	GarmentName      string
	PersonImagePath  string
	GarmentImagePath string
	Variant          string
}

// Variant is one generation strategy tracked by the registry.
type Variant struct {
	Name              string
	DisplayName       string
	IsPaid            bool
	CostPerGeneration float64
	IsEnabled         bool
	AvgTimeSeconds    float64
	MaxTimeSeconds    float64
	IsBlacklisted     bool
	BlacklistReason   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Available reports whether the variant may accept new generations.
func (v Variant) Available() bool {
	return v.IsEnabled && !v.IsBlacklisted
}

// Stats captures per-status counts plus the total cost of completed
// generations.
type Stats struct {
	ByStatus      map[Status]int
	Total         int
	CompletedCost float64
}

// HealthSummary describes aggregated ledger counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// DatabaseHealth captures diagnostic information about the ledger database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalGenerations int
	EnabledVariants  int
	Error            string
}
