package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"fitroom/internal/api"
)

// ListVariants returns registry entries. By default the daemon hides
// disabled and blacklisted variants; includeUnavailable lists everything.
func (c *Client) ListVariants(ctx context.Context, includeUnavailable bool) ([]api.Variant, error) {
	query := url.Values{}
	if includeUnavailable {
		query.Set("all", "1")
	}
	var payload api.VariantListResponse
	if err := c.getJSON(ctx, "/api/variants", query, &payload); err != nil {
		return nil, err
	}
	return payload.Variants, nil
}

// EnableVariant marks a variant claimable again.
func (c *Client) EnableVariant(ctx context.Context, name string) (*api.Variant, error) {
	return c.variantAction(ctx, name, "enable")
}

// DisableVariant removes a variant from claiming without touching its timings.
func (c *Client) DisableVariant(ctx context.Context, name string) (*api.Variant, error) {
	return c.variantAction(ctx, name, "disable")
}

// ResetVariant clears recorded timings and lifts an automatic blacklist.
func (c *Client) ResetVariant(ctx context.Context, name string) (*api.Variant, error) {
	return c.variantAction(ctx, name, "reset")
}

func (c *Client) variantAction(ctx context.Context, name, action string) (*api.Variant, error) {
	if c == nil {
		return nil, ErrUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("variant name is required")
	}
	endpoint := c.endpoint("/api/variants/"+name+"/"+action, nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req)

	var payload api.VariantResponse
	if err := c.roundTrip(req, &payload); err != nil {
		return nil, err
	}
	return &payload.Variant, nil
}
