package main

import "testing"

func TestStatusShowsLedgerSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCompleted(t, env, "cloud-premium")
	seedFailed(t, env, "local-free")

	stdout, _, err := runCLI(t, []string{"status"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "System Status")
	requireContains(t, stdout, "Running (pid")
	requireContains(t, stdout, "Generation Ledger")
	requireContains(t, stdout, "Completed")
	requireContains(t, stdout, "Failed")
	requireContains(t, stdout, "Total: 2 generations (completed cost 1.00)")
}

func TestStatusEmptyLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"status"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "Ledger is empty")
}

func TestStatusFallsBackToDirectAccess(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCompleted(t, env, "cloud-premium")

	stdout, _, err := runCLI(t, []string{"status"}, unreachableAddr(t), env.configPath)
	if err != nil {
		t.Fatalf("status without daemon: %v", err)
	}
	requireContains(t, stdout, "Not running (direct database access)")
	requireContains(t, stdout, "Completed")
}
