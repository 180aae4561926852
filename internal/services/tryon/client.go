package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fitroom/internal/config"
	"fitroom/internal/services"
)

const (
	defaultRequestTimeout = 300 * time.Second
	defaultHealthTimeout  = 5 * time.Second

	// maxErrorBody bounds how much of an error response is echoed into
	// error messages and logs.
	maxErrorBody = 2048
)

// GenerateRequest carries the inputs for a single synthesis call.
type GenerateRequest struct {
	PersonImage     []byte
	PersonFilename  string
	GarmentImage    []byte
	GarmentFilename string
	// EnhancePrompt asks the backend to run LLM prompt enhancement before
	// synthesis. It is forwarded as the use_ollama query parameter.
	EnhancePrompt bool
}

// GenerateResult captures the backend's answer for a successful call.
type GenerateResult struct {
	ResultURL       string
	GarmentAnalysis string
	EnhancedPrompt  string
}

// response models the raw JSON payload returned by the backend.
type response struct {
	Success         bool   `json:"success"`
	ResultURL       string `json:"result_url"`
	GarmentAnalysis string `json:"garment_analysis"`
	EnhancedPrompt  string `json:"enhanced_prompt"`
	Error           string `json:"error"`
}

// Backend defines the synthesis operations used by the workflow manager.
type Backend interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	FetchResult(ctx context.Context, resultURL string) ([]byte, string, error)
	Health(ctx context.Context) error
}

// Client talks to the try-on synthesis backend over HTTP.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	healthTimeout time.Duration
}

var _ Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestTimeout overrides the hard ceiling for a single synthesis call.
// Per-generation budgets are applied by the caller through the context.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHealthTimeout overrides the deadline applied to health probes.
func WithHealthTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.healthTimeout = timeout
		}
	}
}

// New creates a backend client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tryon", "new", "inference base url required", nil)
	}
	client := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: defaultRequestTimeout},
		healthTimeout: defaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FromConfig creates a backend client using the inference section of the
// configuration file.
func FromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	configured := []Option{
		WithRequestTimeout(time.Duration(cfg.Inference.RequestTimeout) * time.Second),
		WithHealthTimeout(time.Duration(cfg.Inference.HealthTimeout) * time.Second),
	}
	return New(cfg.Inference.BaseURL, append(configured, opts...)...)
}

// Generate submits one person/garment pair for synthesis and returns the
// location of the rendered result. The call blocks until the backend answers
// or the context deadline expires; callers enforce the per-variant budget.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if len(req.PersonImage) == 0 {
		return nil, services.Wrap(services.ErrValidation, "tryon", "generate", "person image data required", nil)
	}
	if len(req.GarmentImage) == 0 {
		return nil, services.Wrap(services.ErrValidation, "tryon", "generate", "garment image data required", nil)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writeImagePart(writer, "person_image", req.PersonFilename, req.PersonImage); err != nil {
		return nil, err
	}
	if err := writeImagePart(writer, "garment_image", req.GarmentFilename, req.GarmentImage); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	endpoint, err := url.Parse(c.baseURL + "/api/tryon")
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	params := url.Values{}
	params.Set("use_ollama", strconv.FormatBool(req.EnhancePrompt))
	endpoint.RawQuery = params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	requestStart := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	latency := time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "tryon", "generate",
				fmt.Sprintf("request timed out (latency=%v)", latency), err)
		}
		return nil, services.Wrap(services.ErrExternalService, "tryon", "generate",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalService, "tryon", "generate",
			fmt.Sprintf("backend returned %d (latency=%v): %s", resp.StatusCode, latency, readErrorBody(resp.Body)), nil)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "tryon", "generate", "decode backend response", err)
	}
	if !payload.Success {
		message := strings.TrimSpace(payload.Error)
		if message == "" {
			message = "backend reported failure without detail"
		}
		return nil, services.Wrap(services.ErrExternalService, "tryon", "generate", message, nil)
	}
	if strings.TrimSpace(payload.ResultURL) == "" {
		return nil, services.Wrap(services.ErrExternalService, "tryon", "generate", "backend response missing result_url", nil)
	}

	return &GenerateResult{
		ResultURL:       payload.ResultURL,
		GarmentAnalysis: payload.GarmentAnalysis,
		EnhancedPrompt:  payload.EnhancedPrompt,
	}, nil
}

// FetchResult downloads the rendered image a successful Generate call points
// at. Relative URLs are resolved against the backend base URL. It returns the
// image bytes together with the Content-Type reported by the backend.
func (c *Client) FetchResult(ctx context.Context, resultURL string) ([]byte, string, error) {
	resultURL = strings.TrimSpace(resultURL)
	if resultURL == "" {
		return nil, "", services.Wrap(services.ErrValidation, "tryon", "fetch result", "result url required", nil)
	}
	resolved, err := c.resolveResultURL(resultURL)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "", services.Wrap(services.ErrTimeout, "tryon", "fetch result",
				fmt.Sprintf("request timed out (latency=%v)", latency), err)
		}
		return nil, "", services.Wrap(services.ErrExternalService, "tryon", "fetch result",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", services.Wrap(services.ErrExternalService, "tryon", "fetch result",
			fmt.Sprintf("backend returned %d for %s", resp.StatusCode, resolved), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", services.Wrap(services.ErrExternalService, "tryon", "fetch result", "read result body", err)
	}
	if len(data) == 0 {
		return nil, "", services.Wrap(services.ErrExternalService, "tryon", "fetch result", "backend returned an empty result image", nil)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Health probes the backend liveness endpoint. Any 200 answer counts as
// healthy; the body is discarded.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "tryon", "health", "probe timed out", err)
		}
		return services.Wrap(services.ErrExternalService, "tryon", "health", "backend unreachable", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalService, "tryon", "health",
			fmt.Sprintf("backend returned %d", resp.StatusCode), nil)
	}
	return nil
}

// BaseURL reports the backend address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) resolveResultURL(resultURL string) (string, error) {
	parsed, err := url.Parse(resultURL)
	if err != nil {
		return "", fmt.Errorf("parse result url %q: %w", resultURL, err)
	}
	if parsed.IsAbs() {
		return resultURL, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	return base.ResolveReference(parsed).String(), nil
}

func writeImagePart(writer *multipart.Writer, field, filename string, data []byte) error {
	if strings.TrimSpace(filename) == "" {
		filename = field + ".jpg"
	}
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

func readErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "no response body"
	}
	return text
}
