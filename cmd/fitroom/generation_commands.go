package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fitroom/internal/api"
	"fitroom/internal/config"
	"fitroom/internal/ledgeraccess"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generation records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(session ledgeraccess.Session) error {
				items, err := session.Access.List(cmd.Context(), statuses)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"items": items})
				}
				rows := buildGenerationRows(items)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No generations found")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Person", "Garment", "Variant", "Status", "Rating", "Cost", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one generation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGenerationID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(session ledgeraccess.Session) error {
				item, err := session.Access.Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("generation %d not found", id)
				}
				if asJSON {
					return writeJSON(cmd, item)
				}
				for _, line := range generationDetailLines(*item) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newTryonCommand(ctx *commandContext) *cobra.Command {
	var personPath string
	var garmentPath string
	var garmentURL string
	var variant string
	var personName string
	var garmentName string

	cmd := &cobra.Command{
		Use:   "tryon",
		Short: "Submit a try-on generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CreateRequest{
				PersonName:  strings.TrimSpace(personName),
				GarmentName: strings.TrimSpace(garmentName),
				GarmentURL:  strings.TrimSpace(garmentURL),
				Variant:     strings.TrimSpace(variant),
			}

			person, err := loadUpload(personPath)
			if err != nil {
				return err
			}
			req.Person = person

			garment, err := loadUpload(garmentPath)
			if err != nil {
				return err
			}
			req.Garment = garment

			return ctx.withSession(cmd, func(session ledgeraccess.Session) error {
				accepted, err := session.Access.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Generation %d queued (%s)\n", accepted.ID, formatStatusLabel(accepted.Status))
				if session.Direct {
					fmt.Fprintln(stdout, "Daemon is not running; the record stays pending until it starts")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&personPath, "person", "", "Person photo file (required)")
	cmd.Flags().StringVar(&garmentPath, "garment", "", "Garment image file")
	cmd.Flags().StringVar(&garmentURL, "garment-url", "", "Garment image URL (alternative to --garment)")
	cmd.Flags().StringVar(&variant, "variant", "", "Model variant name (required)")
	cmd.Flags().StringVar(&personName, "person-name", "", "Display name for the person photo")
	cmd.Flags().StringVar(&garmentName, "garment-name", "", "Display name for the garment")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("variant")
	return cmd
}

func newRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <rating>",
		Short: "Rate a completed generation (0 clears)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGenerationID(args[0])
			if err != nil {
				return err
			}
			rating, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil || rating < 0 || rating > 5 {
				return fmt.Errorf("invalid rating %q (expected 0-5)", args[1])
			}
			return ctx.withSession(cmd, func(session ledgeraccess.Session) error {
				item, err := session.Access.SetRating(cmd.Context(), id, rating)
				if err != nil {
					if ledgeraccess.IsNotFound(err) {
						return fmt.Errorf("generation %d not found", id)
					}
					return err
				}
				if rating == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Generation %d rating cleared\n", item.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generation %d rated %d/5\n", item.ID, item.Rating)
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a generation and its stored images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGenerationID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(session ledgeraccess.Session) error {
				err := session.Access.Delete(cmd.Context(), id)
				if ledgeraccess.IsNotFound(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "Generation %d not found\n", id)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generation %d deleted\n", id)
				return nil
			})
		},
	}
}

func parseGenerationID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid generation id %q", arg)
	}
	return id, nil
}

func loadUpload(path string) (api.UploadedImage, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return api.UploadedImage{}, nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return api.UploadedImage{}, fmt.Errorf("resolve image path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return api.UploadedImage{}, fmt.Errorf("read image %s: %w", path, err)
	}
	return api.UploadedImage{Data: data, Filename: filepath.Base(expanded)}, nil
}
