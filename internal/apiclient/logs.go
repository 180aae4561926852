package apiclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"fitroom/internal/api"
)

// LogsQuery filters the daemon log stream.
type LogsQuery struct {
	Since      uint64
	Limit      int
	Follow     bool
	Level      string
	Component  string
	Generation int64
}

// Logs fetches buffered daemon log events after the supplied cursor. With
// Follow set the daemon holds the request open until new events arrive or
// ctx is cancelled.
func (c *Client) Logs(ctx context.Context, q LogsQuery) (api.LogStreamResponse, error) {
	values := url.Values{}
	if q.Since > 0 {
		values.Set("since", strconv.FormatUint(q.Since, 10))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Follow {
		values.Set("follow", "1")
	}
	if strings.TrimSpace(q.Level) != "" {
		values.Set("level", q.Level)
	}
	if strings.TrimSpace(q.Component) != "" {
		values.Set("component", q.Component)
	}
	if q.Generation > 0 {
		values.Set("generation", strconv.FormatInt(q.Generation, 10))
	}
	var payload api.LogStreamResponse
	if err := c.getJSON(ctx, "/api/logs", values, &payload); err != nil {
		return api.LogStreamResponse{}, err
	}
	return payload, nil
}
