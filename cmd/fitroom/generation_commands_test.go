package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"fitroom/internal/testsupport"
)

func TestTryonQueuesGeneration(t *testing.T) {
	env := setupCLITestEnv(t)

	personPath := filepath.Join(env.baseDir, "alice.jpg")
	if err := os.WriteFile(personPath, testsupport.JPEGBytes(t, 32, 32), 0o644); err != nil {
		t.Fatalf("write person image: %v", err)
	}
	garmentPath := filepath.Join(env.baseDir, "dress.png")
	if err := os.WriteFile(garmentPath, testsupport.PNGBytes(t, 32, 32), 0o644); err != nil {
		t.Fatalf("write garment image: %v", err)
	}

	stdout, stderr, err := runCLI(t, []string{
		"tryon",
		"--person", personPath,
		"--garment", garmentPath,
		"--variant", "local-free",
		"--person-name", "Alice",
		"--garment-name", "Red Dress",
	}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("tryon: %v (stderr=%s)", err, stderr)
	}
	requireContains(t, stdout, "Generation 1 queued (Pending)")

	stdout, _, err = runCLI(t, []string{"list"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, stdout, "Alice")
	requireContains(t, stdout, "Red Dress")
	requireContains(t, stdout, "local-free")

	stdout, _, err = runCLI(t, []string{"show", "1"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, stdout, "Generation #1")
	requireContains(t, stdout, "Alice")
}

func TestTryonRequiresPersonFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"tryon", "--variant", "local-free"}, env.apiAddr, env.configPath)
	if err == nil {
		t.Fatal("expected missing --person to fail")
	}
}

func TestListEmptyLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"list"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, stdout, "No generations found")
}

func TestListFiltersByStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCompleted(t, env, "cloud-premium")
	seedFailed(t, env, "local-free")

	stdout, _, err := runCLI(t, []string{"list", "--status", "failed"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("list --status failed: %v", err)
	}
	requireContains(t, stdout, "local-free")
	requireNotContains(t, stdout, "cloud-premium")

	stdout, _, err = runCLI(t, []string{"list", "--json"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	requireContains(t, stdout, `"items"`)
	requireContains(t, stdout, `"cloud-premium"`)
}

func TestShowReportsMissingGeneration(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"show", "42"}, env.apiAddr, env.configPath)
	if err == nil {
		t.Fatal("expected show on missing id to fail")
	}
	requireContains(t, err.Error(), "generation 42 not found")

	_, _, err = runCLI(t, []string{"show", "zero"}, env.apiAddr, env.configPath)
	if err == nil {
		t.Fatal("expected non-numeric id to fail")
	}
	requireContains(t, err.Error(), `invalid generation id "zero"`)
}

func TestRateCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	gen := seedCompleted(t, env, "cloud-premium")

	stdout, _, err := runCLI(t, []string{"rate", fmt.Sprint(gen.ID), "4"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	requireContains(t, stdout, fmt.Sprintf("Generation %d rated 4/5", gen.ID))

	stdout, _, err = runCLI(t, []string{"rate", fmt.Sprint(gen.ID), "0"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("rate clear: %v", err)
	}
	requireContains(t, stdout, fmt.Sprintf("Generation %d rating cleared", gen.ID))

	_, _, err = runCLI(t, []string{"rate", "999", "3"}, env.apiAddr, env.configPath)
	if err == nil {
		t.Fatal("expected rating a missing generation to fail")
	}
	requireContains(t, err.Error(), "generation 999 not found")

	_, _, err = runCLI(t, []string{"rate", fmt.Sprint(gen.ID), "7"}, env.apiAddr, env.configPath)
	if err == nil {
		t.Fatal("expected out of range rating to fail")
	}
	requireContains(t, err.Error(), `invalid rating "7"`)
}

func TestDeleteCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	gen := seedCompleted(t, env, "local-free")

	stdout, _, err := runCLI(t, []string{"delete", fmt.Sprint(gen.ID)}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireContains(t, stdout, fmt.Sprintf("Generation %d deleted", gen.ID))

	if _, err := os.Stat(gen.PersonImagePath); !os.IsNotExist(err) {
		t.Fatalf("expected person image to be removed, stat err=%v", err)
	}

	stdout, _, err = runCLI(t, []string{"delete", fmt.Sprint(gen.ID)}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	requireContains(t, stdout, fmt.Sprintf("Generation %d not found", gen.ID))
}
