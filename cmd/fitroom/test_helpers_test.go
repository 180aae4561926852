package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitroom/internal/config"
	"fitroom/internal/daemon"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/services/tryon"
	"fitroom/internal/testsupport"
	"fitroom/internal/workflow"
)

type idleBackend struct{}

func (idleBackend) Generate(context.Context, tryon.GenerateRequest) (*tryon.GenerateResult, error) {
	return &tryon.GenerateResult{ResultURL: "/results/cli-test.jpg"}, nil
}

func (idleBackend) FetchResult(context.Context, string) ([]byte, string, error) {
	return []byte("result"), "image/jpeg", nil
}

func (idleBackend) Health(context.Context) error { return nil }

type cliTestEnv struct {
	cfg        *config.Config
	store      *ledger.Store
	daemon     *daemon.Daemon
	hub        *logging.StreamHub
	apiAddr    string
	configPath string
	baseDir    string
	logPath    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("FITROOM_API_TOKEN", "")
	t.Setenv("FITROOM_INFERENCE_URL", "")
	t.Setenv("FITROOM_NTFY_TOPIC", "")

	cfg := testsupport.NewConfig(t)
	// A single worker claims once at startup and then sleeps for the rest of
	// the test, so seeded records keep the status they were given.
	cfg.Workflow.GenerationWorkers = 1
	cfg.Workflow.QueuePollInterval = 3600

	logPath := filepath.Join(cfg.Paths.LogDir, "fitroom.log")
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(logPath, nil, 0o644); err != nil {
		t.Fatalf("create log file: %v", err)
	}

	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	hub := logging.NewStreamHub(256)
	mgr := workflow.NewManager(cfg, store, idleBackend{}, logger)

	d, err := daemon.New(cfg, store, logger, mgr, logPath, hub, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		d.Stop()
	})

	configPath := filepath.Join(homeDir, ".config", "fitroom", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg, d.Addr())

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		hub:        hub,
		apiAddr:    d.Addr(),
		configPath: configPath,
		baseDir:    testsupport.BaseDir(cfg),
		logPath:    logPath,
	}
}

func runCLI(t *testing.T, args []string, apiAddr, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if apiAddr != "" {
		flags = append(flags, "--api", apiAddr)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, apiBind string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
uploads_dir = %q
results_dir = %q
log_dir = %q
api_bind = %q

[workflow]
generation_workers = %d
queue_poll_interval = %d
`,
		cfg.Paths.DataDir,
		cfg.Paths.UploadsDir,
		cfg.Paths.ResultsDir,
		cfg.Paths.LogDir,
		apiBind,
		cfg.Workflow.GenerationWorkers,
		cfg.Workflow.QueuePollInterval,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// unreachableAddr reserves a loopback port and releases it so connections to
// the address are refused.
func unreachableAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}
	return addr
}

func seedCompleted(t *testing.T, env *cliTestEnv, variant string) *ledger.Generation {
	t.Helper()
	gen := testsupport.NewGeneration(t, env.cfg, env.store, variant)
	ctx := context.Background()
	if err := env.store.MarkProcessing(ctx, gen.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	resultPath := filepath.Join(env.cfg.Paths.ResultsDir, fmt.Sprintf("result_%d.jpg", gen.ID))
	testsupport.WriteFile(t, resultPath, 64)
	if err := env.store.MarkCompleted(ctx, gen.ID, resultPath, 1.5); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	updated, err := env.store.GetByID(ctx, gen.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return updated
}

func seedFailed(t *testing.T, env *cliTestEnv, variant string) *ledger.Generation {
	t.Helper()
	gen := testsupport.NewGeneration(t, env.cfg, env.store, variant)
	ctx := context.Background()
	if err := env.store.MarkProcessing(ctx, gen.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := env.store.MarkFailed(ctx, gen.ID, "backend unreachable"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	updated, err := env.store.GetByID(ctx, gen.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return updated
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q to not contain %q", output, substr)
	}
}
