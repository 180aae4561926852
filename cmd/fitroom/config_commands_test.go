package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration to")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", env.configPath)
	if err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	requireContains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", env.configPath)
	if err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	env := setupCLITestEnv(t)

	content := fmt.Sprintf(`[paths]
data_dir = %q
uploads_dir = %q
results_dir = %q
log_dir = %q
api_bind = %q
api_token = "sekrit"
`,
		env.cfg.Paths.DataDir,
		env.cfg.Paths.UploadsDir,
		env.cfg.Paths.ResultsDir,
		env.cfg.Paths.LogDir,
		env.apiAddr,
	)
	path := filepath.Join(env.baseDir, "with-token.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"config", "show"}, "", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, stdout, "[paths]")
	requireContains(t, stdout, env.cfg.Paths.DataDir)
	requireContains(t, stdout, "<set>")
	requireNotContains(t, stdout, "sekrit")
}

func TestConfigPathPrintsResolvedPath(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"config", "path"}, "", env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, stdout, env.configPath)
	requireNotContains(t, stdout, "defaults are in use")

	missing := filepath.Join(env.baseDir, "missing.toml")
	stdout, _, err = runCLI(t, []string{"config", "path"}, "", missing)
	if err != nil {
		t.Fatalf("config path (missing file): %v", err)
	}
	requireContains(t, stdout, missing)
	requireContains(t, stdout, "(file does not exist; defaults are in use)")
}
