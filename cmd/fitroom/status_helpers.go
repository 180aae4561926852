package main

import (
	"fmt"
	"strings"

	"fitroom/internal/api"
	"fitroom/internal/config"
	"fitroom/internal/preflight"
)

func daemonStatusLine(st api.DaemonStatus, direct, colorize bool) string {
	if direct {
		return renderStatusLine("Daemon", statusInfo, "Not running (direct database access)", colorize)
	}
	if st.Running {
		detail := fmt.Sprintf("Running (pid %d)", st.PID)
		if version := strings.TrimSpace(st.Version); version != "" {
			detail = fmt.Sprintf("Running (pid %d, version %s)", st.PID, version)
		}
		return renderStatusLine("Daemon", statusOK, detail, colorize)
	}
	return renderStatusLine("Daemon", statusWarn, "API reachable but workflow stopped", colorize)
}

func backendStatusLine(cfg *config.Config, colorize bool) string {
	result := preflight.CheckBackendFromConfig(cfg)
	if result.Passed {
		return renderStatusLine("Inference backend", statusOK, result.Detail, colorize)
	}
	return renderStatusLine("Inference backend", statusWarn, result.Detail, colorize)
}

func notificationsStatusLine(cfg *config.Config, colorize bool) string {
	result := preflight.NotificationsStatus(cfg)
	kind := statusWarn
	switch {
	case result.Passed && strings.EqualFold(result.Detail, "disabled"):
		kind = statusInfo
	case result.Passed:
		kind = statusOK
	}
	return renderStatusLine("Notifications", kind, result.Detail, colorize)
}

func directoryStatusLines(cfg *config.Config, colorize bool) []string {
	if cfg == nil {
		return nil
	}
	checks := []struct {
		label string
		path  string
	}{
		{"Data directory", cfg.Paths.DataDir},
		{"Uploads directory", cfg.Paths.UploadsDir},
		{"Results directory", cfg.Paths.ResultsDir},
		{"Log directory", cfg.Paths.LogDir},
	}
	lines := make([]string, 0, len(checks))
	for _, check := range checks {
		result := preflight.CheckDirectoryAccess(check.label, check.path)
		kind := statusError
		if result.Passed {
			kind = statusOK
		}
		lines = append(lines, renderStatusLine(check.label, kind, result.Detail, colorize))
	}
	return lines
}
