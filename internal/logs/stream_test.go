package logs_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fitroom/internal/api"
	"fitroom/internal/apiclient"
	"fitroom/internal/logs"
)

func TestStreamPrefersAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/logs" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("level"); got != "warn" {
			t.Errorf("unexpected level filter %q", got)
		}
		_ = json.NewEncoder(w).Encode(api.LogStreamResponse{
			Events: []api.LogEvent{{Sequence: 1, Level: "WARN", Message: "variant blacklisted"}},
			Next:   1,
		})
	}))
	defer server.Close()

	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var events []api.LogEvent
	printed, err := logs.Stream(context.Background(), client, "", logs.Options{
		Lines:   10,
		Filters: logs.Filters{Level: "warn"},
	}, func(evt api.LogEvent) {
		events = append(events, evt)
	}, nil)
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if !printed {
		t.Fatal("expected events to be emitted")
	}
	if len(events) != 1 || events[0].Message != "variant blacklisted" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestStreamFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fitroom.log")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	var lines []string
	printed, err := logs.Stream(context.Background(), nil, path, logs.Options{Lines: 2}, nil, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if !printed {
		t.Fatal("expected lines to be emitted")
	}
	if len(lines) != 2 || lines[0] != "two" || lines[1] != "three" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestStreamFiltersRequireAPI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fitroom.log")
	if err := os.WriteFile(path, []byte("one\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	_, err := logs.Stream(context.Background(), nil, path, logs.Options{
		Filters: logs.Filters{Component: "workflow"},
	}, nil, nil)
	if !errors.Is(err, logs.ErrFiltersRequireAPI) {
		t.Fatalf("expected filter error, got %v", err)
	}
}

func TestStreamFileFollowStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fitroom.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	var lines []string
	printed, err := logs.Stream(ctx, nil, path, logs.Options{Lines: 1, Follow: true}, nil, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if !printed || len(lines) != 1 || lines[0] != "start" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestFormatEvent(t *testing.T) {
	formatted := logs.FormatEvent(api.LogEvent{
		Sequence:     5,
		Timestamp:    "2025-06-01T12:00:00.000Z",
		Level:        "warn",
		Message:      "variant blacklisted",
		Component:    "workflow",
		GenerationID: 7,
		Variant:      "cloud-free",
		Details: []api.DetailField{
			{Label: "Reason", Value: "average generation time exceeded the limit"},
			{Label: "", Value: "dropped"},
		},
	})

	for _, want := range []string{
		"WARN",
		"[workflow]",
		"Generation #7 (cloud-free)",
		"variant blacklisted",
		"\n    - Reason: average generation time exceeded the limit",
	} {
		if !strings.Contains(formatted, want) {
			t.Fatalf("formatted event missing %q:\n%s", want, formatted)
		}
	}
	if strings.Contains(formatted, "dropped") {
		t.Fatalf("detail without label should be skipped:\n%s", formatted)
	}

	minimal := logs.FormatEvent(api.LogEvent{Message: "daemon started"})
	if !strings.HasPrefix(minimal, "INFO") {
		t.Fatalf("expected INFO default, got %q", minimal)
	}
	if !strings.Contains(minimal, "daemon started") {
		t.Fatalf("formatted event missing message: %q", minimal)
	}
}
