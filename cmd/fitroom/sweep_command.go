package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fitroom/internal/cleanup"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove orphaned upload and result files",
		Long: "Remove image files under the uploads and results directories that no\n" +
			"ledger record references and that are older than cleanup.min_age_hours.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			sweeper := cleanup.NewSweeper(cfg, store, logging.NewNop())
			result, err := sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Examined %d files, removed %d orphans\n", result.Examined, result.Removed)
			if result.Failed > 0 {
				fmt.Fprintf(stdout, "Failed to remove %d files\n", result.Failed)
			}
			if result.FreedBytes > 0 {
				fmt.Fprintf(stdout, "Freed %s\n", humanBytes(result.FreedBytes))
			}
			return nil
		},
	}
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
