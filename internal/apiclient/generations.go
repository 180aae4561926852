package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fitroom/internal/api"
)

// CreateGenerationRequest carries the inputs for a new try-on submission.
// GarmentImage and GarmentURL are alternatives; the daemon rejects requests
// that supply neither.
type CreateGenerationRequest struct {
	PersonName      string
	GarmentName     string
	PersonImage     []byte
	PersonFilename  string
	GarmentImage    []byte
	GarmentFilename string
	GarmentURL      string
	Variant         string
}

// ListGenerations returns ledger records, optionally filtered by status.
func (c *Client) ListGenerations(ctx context.Context, statuses []string) ([]api.Generation, error) {
	query := url.Values{}
	for _, status := range statuses {
		if s := strings.TrimSpace(status); s != "" {
			query.Add("status", s)
		}
	}
	var payload api.GenerationListResponse
	if err := c.getJSON(ctx, "/api/generations", query, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// GetGeneration fetches one record. Missing records return nil without error.
func (c *Client) GetGeneration(ctx context.Context, id int64) (*api.Generation, error) {
	var payload api.GenerationResponse
	err := c.getJSON(ctx, "/api/generations/"+strconv.FormatInt(id, 10), nil, &payload)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &payload.Item, nil
}

// CreateGeneration submits person and garment images for processing. The
// daemon answers before inference starts, so the returned status is pending.
func (c *Client) CreateGeneration(ctx context.Context, req CreateGenerationRequest) (api.CreateAccepted, error) {
	if c == nil {
		return api.CreateAccepted{}, ErrUnavailable
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := []struct {
		name  string
		value string
	}{
		{"person_name", req.PersonName},
		{"garment_name", req.GarmentName},
		{"garment_url", req.GarmentURL},
		{"variant", req.Variant},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		if err := writer.WriteField(field.name, field.value); err != nil {
			return api.CreateAccepted{}, fmt.Errorf("encode %s field: %w", field.name, err)
		}
	}
	if len(req.PersonImage) > 0 {
		if err := writeFilePart(writer, "person_image", req.PersonFilename, req.PersonImage); err != nil {
			return api.CreateAccepted{}, err
		}
	}
	if len(req.GarmentImage) > 0 {
		if err := writeFilePart(writer, "garment_image", req.GarmentFilename, req.GarmentImage); err != nil {
			return api.CreateAccepted{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return api.CreateAccepted{}, fmt.Errorf("finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/generations", nil), &body)
	if err != nil {
		return api.CreateAccepted{}, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyHeaders(httpReq)

	var payload api.CreateAccepted
	if err := c.roundTrip(httpReq, &payload); err != nil {
		return api.CreateAccepted{}, err
	}
	return payload, nil
}

// DeleteGeneration removes a record and its stored images.
func (c *Client) DeleteGeneration(ctx context.Context, id int64) error {
	if c == nil {
		return ErrUnavailable
	}
	endpoint := c.endpoint("/api/generations/"+strconv.FormatInt(id, 10), nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)
	return c.roundTrip(req, nil)
}

// SetRating stores a rating on a completed generation and returns the
// updated record.
func (c *Client) SetRating(ctx context.Context, id int64, rating int) (*api.Generation, error) {
	if c == nil {
		return nil, ErrUnavailable
	}
	payload, err := json.Marshal(map[string]int{"rating": rating})
	if err != nil {
		return nil, fmt.Errorf("encode rating request: %w", err)
	}
	endpoint := c.endpoint("/api/generations/"+strconv.FormatInt(id, 10)+"/rating", nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)

	var resp api.GenerationResponse
	if err := c.roundTrip(req, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

func writeFilePart(writer *multipart.Writer, field, filename string, data []byte) error {
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}
