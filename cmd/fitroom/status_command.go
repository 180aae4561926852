package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fitroom/internal/ledgeraccess"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and ledger status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			return ctx.withSession(cmd, func(session ledgeraccess.Session) error {
				st, err := session.Access.DaemonStatus(cmd.Context())
				if err != nil {
					return err
				}

				for _, line := range renderSectionHeader("System Status", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, daemonStatusLine(st, session.Direct, colorize))
				if path := strings.TrimSpace(st.DatabasePath); path != "" {
					fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, path, colorize))
				}
				fmt.Fprintln(stdout, backendStatusLine(cfg, colorize))
				fmt.Fprintln(stdout, notificationsStatusLine(cfg, colorize))
				for _, line := range directoryStatusLines(cfg, colorize) {
					fmt.Fprintln(stdout, line)
				}
				if lastError := strings.TrimSpace(st.Workflow.LastError); lastError != "" {
					fmt.Fprintln(stdout, renderStatusLine("Workflow", statusWarn, lastError, colorize))
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Generation Ledger", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := buildStatusRows(st.Workflow.Counts)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "Ledger is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(stdout, table)
				fmt.Fprintf(stdout, "Total: %d generations (completed cost %s)\n",
					st.Workflow.Total, formatCost(st.Workflow.CompletedCost))
				return nil
			})
		},
	}
}
