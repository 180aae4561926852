package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fitroom/internal/apiclient"
	"fitroom/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
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
			if client != nil {
				result, err := client.TestNotification(cmd.Context())
				if err == nil {
					printNotifyResult(stdout, result.Sent, result.Message)
					return nil
				}
				if !apiclient.IsUnavailable(err) {
					return err
				}
			}

			// Daemon down; publish straight from the CLI process.
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(stdout, "ntfy topic not configured")
				return nil
			}
			notifier := notifications.NewService(cfg)
			if err := notifier.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(stdout, "Test notification sent")
			return nil
		},
	}
}

func printNotifyResult(out io.Writer, sent bool, message string) {
	switch {
	case message != "":
		fmt.Fprintln(out, message)
	case sent:
		fmt.Fprintln(out, "Test notification sent")
	default:
		fmt.Fprintln(out, "Notification not sent")
	}
}
