package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fitroom/internal/apiclient"
	"fitroom/internal/daemonrun"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Daemon operations",
	}

	daemonCmd.AddCommand(newDaemonRunCommand(ctx))
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))

	return daemonCmd
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool
	var diagnostic bool

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the fitroom daemon in the foreground",
		Annotations:  map[string]string{"skipConfigLoad": "true"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
				Diagnostic:  diagnostic,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log output")
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Enable diagnostic mode with a separate DEBUG log")
	return cmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon process status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			client, err := ctx.apiClient(cfg)
			if err != nil {
				return err
			}
			if client == nil {
				fmt.Fprintln(stdout, "Daemon API is not configured (paths.api_bind is empty)")
				return nil
			}

			probeCtx, cancel := context.WithTimeout(cmd.Context(), daemonProbeTimeout)
			defer cancel()
			st, err := client.Status(probeCtx)
			if err != nil {
				if apiclient.IsUnavailable(err) {
					fmt.Fprintln(stdout, "Daemon is not running")
					return nil
				}
				return err
			}

			fmt.Fprintf(stdout, "Daemon running (pid %d, version %s)\n", st.PID, st.Version)
			fmt.Fprintf(stdout, "Workflow running: %s (%d workers)\n", yesNo(st.Workflow.Running), st.Workflow.Workers)
			fmt.Fprintf(stdout, "Database: %s\n", st.DatabasePath)
			if st.LockFilePath != "" {
				fmt.Fprintf(stdout, "Lock file: %s\n", st.LockFilePath)
			}
			return nil
		},
	}
}
