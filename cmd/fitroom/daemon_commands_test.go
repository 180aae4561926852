package main

import "testing"

func TestDaemonStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"daemon", "status"}, env.apiAddr, env.configPath)
	if err != nil {
		t.Fatalf("daemon status: %v", err)
	}
	requireContains(t, stdout, "Daemon running (pid")
	requireContains(t, stdout, "Workflow running: yes (1 workers)")
	requireContains(t, stdout, "Database:")

	stdout, _, err = runCLI(t, []string{"daemon", "status"}, unreachableAddr(t), env.configPath)
	if err != nil {
		t.Fatalf("daemon status without daemon: %v", err)
	}
	requireContains(t, stdout, "Daemon is not running")
}
