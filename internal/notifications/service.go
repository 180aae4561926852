package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fitroom/internal/config"
)

const userAgent = "Fitroom-Go/0.1.0"

// Event identifies a workflow milestone that can be pushed to the user.
type Event string

const (
	EventGenerationCompleted Event = "generation_completed"
	EventGenerationFailed    Event = "generation_failed"
	EventVariantBlacklisted  Event = "variant_blacklisted"
	EventTest                Event = "test"
)

// Payload carries event-specific fields used to format the message.
type Payload map[string]string

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, data Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		onGeneration: cfg.Notifications.Generation,
		onErrors:     cfg.Notifications.Errors,
		onBlacklist:  cfg.Notifications.Blacklist,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	onGeneration bool
	onErrors     bool
	onBlacklist  bool
}

// Publish formats and sends one event. Suppressed categories return nil
// without touching the network.
func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if n.suppressed(event) {
		return nil
	}
	msg, err := format(event, data)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) suppressed(event Event) bool {
	switch event {
	case EventGenerationCompleted:
		return !n.onGeneration
	case EventGenerationFailed:
		return !n.onErrors
	case EventVariantBlacklisted:
		return !n.onBlacklist
	default:
		return false
	}
}

func format(event Event, data Payload) (message, error) {
	person := fieldOr(data, "personName", "unknown person")
	garment := fieldOr(data, "garmentName", "unknown garment")

	switch event {
	case EventGenerationCompleted:
		body := fmt.Sprintf("✅ Try-on ready: %s wearing %s", person, garment)
		if details := joinDetails(data["variant"], data["elapsed"]); details != "" {
			body = fmt.Sprintf("%s (%s)", body, details)
		}
		return message{
			title: "Fitroom - Generation Complete",
			body:  body,
			tags:  []string{"fitroom", "generation", "completed"},
		}, nil

	case EventGenerationFailed:
		reason := fieldOr(data, "error", "unknown error")
		return message{
			title:    "Fitroom - Generation Failed",
			body:     fmt.Sprintf("❌ Try-on failed: %s wearing %s: %s", person, garment, reason),
			tags:     []string{"fitroom", "generation", "failed"},
			priority: "high",
		}, nil

	case EventVariantBlacklisted:
		variant := fieldOr(data, "variant", "unknown variant")
		reason := fieldOr(data, "reason", "no reason recorded")
		return message{
			title:    "Fitroom - Variant Blacklisted",
			body:     fmt.Sprintf("🚫 Variant %s pulled from rotation: %s", variant, reason),
			tags:     []string{"fitroom", "variant", "blacklisted"},
			priority: "high",
		}, nil

	case EventTest:
		return message{
			title:    "Fitroom - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"fitroom", "test"},
			priority: "low",
		}, nil

	default:
		return message{}, fmt.Errorf("unknown notification event %q", event)
	}
}

func fieldOr(data Payload, key, fallback string) string {
	if value := strings.TrimSpace(data[key]); value != "" {
		return value
	}
	return fallback
}

func joinDetails(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
