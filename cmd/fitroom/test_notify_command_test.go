package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"test-notify"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, stdout, "ntfy topic not configured")
}

func TestTestNotifyPublishesDirectlyWhenDaemonDown(t *testing.T) {
	env := setupCLITestEnv(t)

	var received atomic.Int32
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ntfy.Close)

	content := fmt.Sprintf(`[paths]
data_dir = %q
uploads_dir = %q
results_dir = %q
log_dir = %q
api_bind = %q

[notifications]
ntfy_topic = %q
`,
		env.cfg.Paths.DataDir,
		env.cfg.Paths.UploadsDir,
		env.cfg.Paths.ResultsDir,
		env.cfg.Paths.LogDir,
		env.apiAddr,
		ntfy.URL+"/fitroom-test",
	)
	path := filepath.Join(env.baseDir, "notify.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"test-notify"}, unreachableAddr(t), path)
	if err != nil {
		t.Fatalf("test-notify without daemon: %v", err)
	}
	requireContains(t, stdout, "Test notification sent")
	if got := received.Load(); got != 1 {
		t.Fatalf("expected 1 ntfy publish, got %d", got)
	}
}
