package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitroom/internal/api"
)

func TestNewNormalizesBaseURL(t *testing.T) {
	client, err := New(Config{BaseURL: ""})
	if err != nil {
		t.Fatalf("New with empty base returned error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client for empty base URL")
	}

	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{Running: true})
	}))
	defer server.Close()

	// A bare host:port must gain an http scheme, and any path or query on
	// the configured URL must not leak into request paths.
	bind := strings.TrimPrefix(server.URL, "http://")
	client, err = New(Config{BaseURL: bind + "/ignored?x=1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.Status(context.Background()); err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if captured == nil {
		t.Fatal("expected request to be captured")
	}
	if captured.URL.Path != "/api/status" {
		t.Fatalf("unexpected request path %q", captured.URL.Path)
	}
}

func TestStatusSendsBearerToken(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{
			Running: true,
			PID:     42,
			Version: "0.1.0",
			Workflow: api.WorkflowStatus{
				Running: true,
				Workers: 2,
			},
		})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !status.Running || status.PID != 42 || status.Workflow.Workers != 2 {
		t.Fatalf("unexpected status payload: %+v", status)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
	if got := captured.Header.Get("Accept"); got != "application/json" {
		t.Fatalf("unexpected Accept header %q", got)
	}
}

func TestListGenerationsBuildsQuery(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		_ = json.NewEncoder(w).Encode(api.GenerationListResponse{Items: []api.Generation{
			{ID: 1, Status: "completed"},
			{ID: 2, Status: "failed"},
		}})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	items, err := client.ListGenerations(context.Background(), []string{"completed", " failed ", ""})
	if err != nil {
		t.Fatalf("ListGenerations returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if captured.URL.Path != "/api/generations" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	statuses := captured.URL.Query()["status"]
	if len(statuses) != 2 || statuses[0] != "completed" || statuses[1] != "failed" {
		t.Fatalf("unexpected status query %v", statuses)
	}
}

func TestGetGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generations/3":
			_ = json.NewEncoder(w).Encode(api.GenerationResponse{Item: api.Generation{ID: 3, PersonName: "Alice"}})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"generation not found"}`))
		}
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	item, err := client.GetGeneration(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetGeneration returned error: %v", err)
	}
	if item == nil || item.PersonName != "Alice" {
		t.Fatalf("unexpected item: %+v", item)
	}

	missing, err := client.GetGeneration(context.Background(), 99)
	if err != nil {
		t.Fatalf("GetGeneration for missing id returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing generation, got %+v", missing)
	}
}

func TestCreateGenerationEncodesMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart form: %v", err)
		}
		if got := r.FormValue("person_name"); got != "Alice" {
			t.Errorf("unexpected person_name %q", got)
		}
		if got := r.FormValue("variant"); got != "local-free" {
			t.Errorf("unexpected variant %q", got)
		}
		if r.FormValue("garment_url") != "" {
			t.Error("garment_url should be omitted when empty")
		}
		file, header, err := r.FormFile("person_image")
		if err != nil {
			t.Errorf("read person_image: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			file.Close()
			if string(data) != "person-bytes" {
				t.Errorf("unexpected person payload %q", data)
			}
			if header.Filename != "alice.jpg" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		if _, _, err := r.FormFile("garment_image"); err != nil {
			t.Errorf("read garment_image: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(api.CreateAccepted{ID: 7, Status: "pending"})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	accepted, err := client.CreateGeneration(context.Background(), CreateGenerationRequest{
		PersonName:      "Alice",
		PersonImage:     []byte("person-bytes"),
		PersonFilename:  "alice.jpg",
		GarmentImage:    []byte("garment-bytes"),
		GarmentFilename: "dress.png",
		Variant:         "local-free",
	})
	if err != nil {
		t.Fatalf("CreateGeneration returned error: %v", err)
	}
	if accepted.ID != 7 || accepted.Status != "pending" {
		t.Fatalf("unexpected accept payload: %+v", accepted)
	}
}

func TestSetRatingPatchesRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/api/generations/5/rating" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body struct {
			Rating int `json:"rating"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Rating != 4 {
			t.Errorf("unexpected rating %d", body.Rating)
		}
		_ = json.NewEncoder(w).Encode(api.GenerationResponse{Item: api.Generation{ID: 5, Rating: 4}})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	item, err := client.SetRating(context.Background(), 5, 4)
	if err != nil {
		t.Fatalf("SetRating returned error: %v", err)
	}
	if item == nil || item.Rating != 4 {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestDeleteGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		switch r.URL.Path {
		case "/api/generations/5":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"generation not found"}`))
		}
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := client.DeleteGeneration(context.Background(), 5); err != nil {
		t.Fatalf("DeleteGeneration returned error: %v", err)
	}

	err = client.DeleteGeneration(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error for missing generation")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if IsUnavailable(err) {
		t.Fatal("API rejection must not read as unavailable")
	}
}

func TestVariantActions(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(api.VariantResponse{Variant: api.Variant{Name: "cloud-free", IsEnabled: false}})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cases := []struct {
		call func() (*api.Variant, error)
		path string
	}{
		{func() (*api.Variant, error) { return client.EnableVariant(context.Background(), "cloud-free") }, "/api/variants/cloud-free/enable"},
		{func() (*api.Variant, error) { return client.DisableVariant(context.Background(), "cloud-free") }, "/api/variants/cloud-free/disable"},
		{func() (*api.Variant, error) { return client.ResetVariant(context.Background(), "cloud-free") }, "/api/variants/cloud-free/reset"},
	}
	for _, tc := range cases {
		variant, err := tc.call()
		if err != nil {
			t.Fatalf("variant action returned error: %v", err)
		}
		if variant == nil || variant.Name != "cloud-free" {
			t.Fatalf("unexpected variant: %+v", variant)
		}
		if captured.URL.Path != tc.path {
			t.Fatalf("expected path %q, got %q", tc.path, captured.URL.Path)
		}
	}

	if _, err := client.EnableVariant(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank variant name")
	}
}

func TestLogsBuildsQuery(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		_ = json.NewEncoder(w).Encode(api.LogStreamResponse{
			Events: []api.LogEvent{{Sequence: 6, Message: "variant blacklisted"}},
			Next:   6,
		})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Logs(context.Background(), LogsQuery{
		Since:      5,
		Limit:      10,
		Follow:     true,
		Level:      "warn",
		Component:  "workflow",
		Generation: 3,
	})
	if err != nil {
		t.Fatalf("Logs returned error: %v", err)
	}
	if len(resp.Events) != 1 || resp.Next != 6 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	query := captured.URL.Query()
	for key, want := range map[string]string{
		"since":      "5",
		"limit":      "10",
		"follow":     "1",
		"level":      "warn",
		"component":  "workflow",
		"generation": "3",
	} {
		if got := query.Get(key); got != want {
			t.Fatalf("query %s: expected %q, got %q", key, want, got)
		}
	}
}

func TestTestNotification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/notify/test" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(api.NotificationTestResult{Sent: true, Message: "test notification sent"})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := client.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification returned error: %v", err)
	}
	if !result.Sent || result.Message != "test notification sent" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHealthDecodesDegradedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(api.HealthResponse{
			Healthy: false,
			Checks: []api.HealthCheck{
				{Name: "Ledger database", Healthy: true},
				{Name: "Inference backend", Healthy: false, Detail: "backend unreachable"},
			},
		})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if health.Healthy {
		t.Fatal("expected degraded health")
	}
	if len(health.Checks) != 2 || health.Checks[1].Detail != "backend unreachable" {
		t.Fatalf("unexpected checks: %+v", health.Checks)
	}
}

func TestErrorBodiesDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"variant unavailable"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.Status(context.Background())
	if err == nil {
		t.Fatal("expected error from 409 response")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict || apiErr.Message != "variant unavailable" {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.ListGenerations(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected raw body in message, got %v", err)
	}
}

func TestIsUnavailable(t *testing.T) {
	if IsUnavailable(nil) {
		t.Fatal("nil error must not read as unavailable")
	}

	var missing *Client
	if _, err := missing.Status(context.Background()); !IsUnavailable(err) {
		t.Fatalf("nil client error should be unavailable, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	server.Close()

	_, err = client.Status(context.Background())
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsUnavailable(err) {
		t.Fatalf("connection refusal should be unavailable, got %v", err)
	}
}
