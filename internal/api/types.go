package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Generation describes a ledger record in a transport-friendly format.
type Generation struct {
	ID                    int64   `json:"id"`
	PersonName            string  `json:"personName"`
	GarmentName           string  `json:"garmentName"`
	Variant               string  `json:"variant"`
	Status                string  `json:"status"`
	Rating                int     `json:"rating"`
	Cost                  float64 `json:"cost"`
	GenerationTimeSeconds float64 `json:"generationTimeSeconds,omitempty"`
	ErrorMessage          string  `json:"errorMessage,omitempty"`
	PersonImageURL        string  `json:"personImageUrl"`
	GarmentImageURL       string  `json:"garmentImageUrl"`
	ResultImageURL        string  `json:"resultImageUrl,omitempty"`
	CreatedAt             string  `json:"createdAt,omitempty"`
	UpdatedAt             string  `json:"updatedAt,omitempty"`
}

// Variant describes a registry entry for API consumers.
type Variant struct {
	Name              string  `json:"name"`
	DisplayName       string  `json:"displayName"`
	IsPaid            bool    `json:"isPaid"`
	CostPerGeneration float64 `json:"costPerGeneration"`
	AvgTimeSeconds    float64 `json:"avgTimeSeconds"`
	MaxTimeSeconds    float64 `json:"maxTimeSeconds,omitempty"`
	IsEnabled         bool    `json:"isEnabled"`
	IsBlacklisted     bool    `json:"isBlacklisted,omitempty"`
	BlacklistReason   string  `json:"blacklistReason,omitempty"`
}

// CreateAccepted is the 202 payload returned when a generation is queued.
type CreateAccepted struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// GenerationListResponse wraps a collection of records for API responses.
type GenerationListResponse struct {
	Items []Generation `json:"items"`
}

// GenerationResponse wraps a single record.
type GenerationResponse struct {
	Item Generation `json:"item"`
}

// VariantListResponse wraps the variant listing.
type VariantListResponse struct {
	Variants []Variant `json:"variants"`
}

// VariantResponse wraps a single registry entry.
type VariantResponse struct {
	Variant Variant `json:"variant"`
}

// StatsResponse provides ledger counters keyed by status string.
type StatsResponse struct {
	Counts        map[string]int `json:"counts"`
	Total         int            `json:"total"`
	CompletedCost float64        `json:"completedCost"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running       bool           `json:"running"`
	Workers       int            `json:"workers"`
	Counts        map[string]int `json:"counts"`
	Total         int            `json:"total"`
	CompletedCost float64        `json:"completedCost"`
	LastError     string         `json:"lastError,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Version      string         `json:"version,omitempty"`
	DatabasePath string         `json:"databasePath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// HealthCheck captures one probe from the daemon health endpoint.
type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// HealthResponse aggregates the daemon health probes.
type HealthResponse struct {
	Healthy bool          `json:"healthy"`
	Checks  []HealthCheck `json:"checks"`
}

// NotificationTestResult reports the outcome of a notification test.
type NotificationTestResult struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// LogEvent mirrors one structured daemon log line for API consumers.
type LogEvent struct {
	Sequence      uint64            `json:"seq"`
	Timestamp     string            `json:"ts"`
	Level         string            `json:"level"`
	Message       string            `json:"msg"`
	Component     string            `json:"component,omitempty"`
	GenerationID  int64             `json:"generationId,omitempty"`
	Variant       string            `json:"variant,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Details       []DetailField     `json:"details,omitempty"`
}

// DetailField carries one label/value pair attached to a log event.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LogStreamResponse pages through buffered daemon log events.
type LogStreamResponse struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}
