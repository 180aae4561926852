package preflight

import (
	"context"
	"strings"

	"fitroom/internal/config"
)

// CheckBackendFromConfig evaluates inference backend status from config and
// connectivity. Used by status UIs that only hold a config.
func CheckBackendFromConfig(cfg *config.Config) Result {
	const name = "Inference backend"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Inference.BaseURL) == "" {
		return Result{Name: name, Detail: "Missing base URL"}
	}
	return CheckBackend(context.Background(), cfg)
}

// NotificationsStatus reports whether push notifications are configured.
// There is no authoritative probe for an ntfy topic, so this only inspects
// the config.
func NotificationsStatus(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: "ntfy topic configured"}
}
