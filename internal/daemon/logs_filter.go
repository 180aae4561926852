package daemon

import (
	"net/http"
	"strconv"
	"strings"

	"fitroom/internal/api"
	"fitroom/internal/logging"
)

const (
	defaultLogLimit = 200
	maxLogLimit     = 1000

	logTimestampFormat = "2006-01-02T15:04:05.000Z07:00"
)

type logQuery struct {
	since      uint64
	limit      int
	follow     bool
	level      string
	component  string
	generation int64
}

func parseLogQuery(r *http.Request) logQuery {
	query := r.URL.Query()
	params := logQuery{limit: defaultLogLimit}

	if raw := query.Get("since"); raw != "" {
		if value, err := strconv.ParseUint(raw, 10, 64); err == nil {
			params.since = value
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			params.limit = min(value, maxLogLimit)
		}
	}
	if raw := query.Get("follow"); raw != "" {
		params.follow = raw == "1" || strings.EqualFold(raw, "true")
	}
	params.level = strings.ToUpper(strings.TrimSpace(query.Get("level")))
	params.component = strings.TrimSpace(query.Get("component"))
	if raw := query.Get("generation"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
			params.generation = value
		}
	}
	return params
}

// levelRank orders levels for minimum-severity filtering.
var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

func (q logQuery) matches(evt logging.LogEvent) bool {
	if q.level != "" {
		want, ok := levelRank[q.level]
		if !ok {
			want = 0
		}
		if levelRank[strings.ToUpper(evt.Level)] < want {
			return false
		}
	}
	if q.component != "" && !strings.EqualFold(evt.Component, q.component) {
		return false
	}
	if q.generation > 0 && evt.GenerationID != q.generation {
		return false
	}
	return true
}

// filterLogEvents applies the query filters and converts hub events into API
// DTOs. The cursor returned alongside already advanced past skipped events, so
// filtering here never stalls pagination.
func filterLogEvents(events []logging.LogEvent, params logQuery) []api.LogEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]api.LogEvent, 0, len(events))
	for _, evt := range events {
		if !params.matches(evt) {
			continue
		}
		out = append(out, convertLogEvent(evt))
	}
	return out
}

func convertLogEvent(evt logging.LogEvent) api.LogEvent {
	converted := api.LogEvent{
		Sequence:      evt.Sequence,
		Level:         evt.Level,
		Message:       evt.Message,
		Component:     evt.Component,
		GenerationID:  evt.GenerationID,
		Variant:       evt.Variant,
		CorrelationID: evt.CorrelationID,
		Fields:        evt.Fields,
	}
	if !evt.Timestamp.IsZero() {
		converted.Timestamp = evt.Timestamp.UTC().Format(logTimestampFormat)
	}
	if len(evt.Details) > 0 {
		details := make([]api.DetailField, 0, len(evt.Details))
		for _, detail := range evt.Details {
			details = append(details, api.DetailField{Label: detail.Label, Value: detail.Value})
		}
		converted.Details = details
	}
	return converted
}
