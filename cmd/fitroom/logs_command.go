package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fitroom/internal/api"
	"fitroom/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var limit int
	var level string
	var component string
	var generation int64

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon logs",
		Long: "Show daemon logs. Structured events stream from the daemon API when it is\n" +
			"running, otherwise the current log file is tailed. Filters need the API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.apiClient(cfg)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			logPath := filepath.Join(cfg.Paths.LogDir, "fitroom.log")

			printed, err := logs.Stream(cmd.Context(), client, logPath, logs.Options{
				Lines:  limit,
				Follow: follow,
				Filters: logs.Filters{
					Level:      level,
					Component:  component,
					Generation: generation,
				},
			},
				func(evt api.LogEvent) { fmt.Fprintln(stdout, logs.FormatEvent(evt)) },
				func(line string) { fmt.Fprintln(stdout, line) },
			)
			if err != nil {
				return err
			}
			if !printed {
				fmt.Fprintln(stdout, "No log entries available")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new entries until interrupted")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&component, "component", "", "Only entries from one component")
	cmd.Flags().Int64Var(&generation, "generation", 0, "Only entries for one generation id")
	return cmd
}
