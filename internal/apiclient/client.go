package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"fitroom/internal/api"
)

// ErrUnavailable indicates the daemon API cannot be reached.
var ErrUnavailable = errors.New("daemon API unavailable")

// Config describes how to reach the daemon control API.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Client calls the fitroom daemon REST API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// New creates a Client from the supplied configuration. An empty base URL
// yields a nil client; calls on a nil client report ErrUnavailable.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, nil
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	parsed.Path = ""
	parsed.RawQuery = ""
	parsed.Fragment = ""

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No timeout - log follow mode blocks until the caller cancels.
		httpClient = &http.Client{}
	}
	return &Client{
		base:  parsed,
		token: strings.TrimSpace(cfg.Token),
		http:  httpClient,
	}, nil
}

// APIError reports a non-2xx response from the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("daemon API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon API returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a daemon 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnavailable reports whether err indicates the daemon API is unreachable,
// as opposed to the daemon rejecting the request.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrUnavailable) || errors.As(err, &opErr)
}

// Status reports daemon runtime state.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var payload api.DaemonStatus
	if err := c.getJSON(ctx, "/api/status", nil, &payload); err != nil {
		return api.DaemonStatus{}, err
	}
	return payload, nil
}

// Health runs the daemon health probes. A degraded daemon answers 503 with
// the same payload shape, so that status decodes instead of erroring.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	if c == nil {
		return api.HealthResponse{}, ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/health", nil), nil)
	if err != nil {
		return api.HealthResponse{}, err
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return api.HealthResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusServiceUnavailable {
		return api.HealthResponse{}, decodeError(resp)
	}
	var payload api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return api.HealthResponse{}, fmt.Errorf("decode health response: %w", err)
	}
	return payload, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref).String()
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// getJSON issues a GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c == nil {
		return ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)
	return c.roundTrip(req, out)
}

func (c *Client) roundTrip(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(body))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		message = strings.TrimSpace(payload.Error)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
