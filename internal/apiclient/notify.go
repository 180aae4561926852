package apiclient

import (
	"context"
	"net/http"

	"fitroom/internal/api"
)

// TestNotification asks the daemon to publish a test notification using its
// active configuration.
func (c *Client) TestNotification(ctx context.Context) (*api.NotificationTestResult, error) {
	if c == nil {
		return nil, ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/notify/test", nil), nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req)
	var result api.NotificationTestResult
	if err := c.roundTrip(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
