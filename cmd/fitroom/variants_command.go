package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fitroom/internal/api"
	"fitroom/internal/ledgeraccess"
)

func newVariantsCommand(ctx *commandContext) *cobra.Command {
	var includeAll bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List model variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(session ledgeraccess.Session) error {
				variants, err := session.Access.ListVariants(cmd.Context(), includeAll)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"variants": variants})
				}
				rows := buildVariantRows(variants)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No variants available")
					return nil
				}
				table := renderTable(
					[]string{"Name", "Display Name", "Paid", "Cost", "Avg Time", "Max Time", "Enabled", "Blacklisted"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeAll, "all", false, "Include disabled and blacklisted variants")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	cmd.AddCommand(newVariantActionCommand(ctx, "enable", "Enable a variant",
		"Variant %s enabled", func(ctx context.Context, access ledgeraccess.Access, name string) (*api.Variant, error) {
			return access.EnableVariant(ctx, name)
		}))
	cmd.AddCommand(newVariantActionCommand(ctx, "disable", "Disable a variant",
		"Variant %s disabled", func(ctx context.Context, access ledgeraccess.Access, name string) (*api.Variant, error) {
			return access.DisableVariant(ctx, name)
		}))
	cmd.AddCommand(newVariantActionCommand(ctx, "reset", "Clear a variant's blacklist and response statistics",
		"Variant %s reset", func(ctx context.Context, access ledgeraccess.Access, name string) (*api.Variant, error) {
			return access.ResetVariant(ctx, name)
		}))

	return cmd
}

func newVariantActionCommand(
	cctx *commandContext,
	use, short, doneFormat string,
	act func(context.Context, ledgeraccess.Access, string) (*api.Variant, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return cctx.withSession(cmd, func(session ledgeraccess.Session) error {
				variant, err := act(cmd.Context(), session.Access, name)
				if err != nil {
					if ledgeraccess.IsNotFound(err) {
						return fmt.Errorf("variant %q not found", name)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), doneFormat+"\n", variant.Name)
				return nil
			})
		},
	}
}
