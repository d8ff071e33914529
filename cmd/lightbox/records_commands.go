package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRecordsCommand(cmdCtx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Manage cataloged records",
	}

	recordsCmd.AddCommand(newRecordsAddCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsListCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsRateCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsTagCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsUntagCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsLabelCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsSelectCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsDeselectCommand(cmdCtx))
	recordsCmd.AddCommand(newRecordsSelectionCommand(cmdCtx))

	return recordsCmd
}

func newRecordsAddCommand(cmdCtx *commandContext) *cobra.Command {
	var capturedAt string
	var force bool

	cmd := &cobra.Command{
		Use:   "add <filename>",
		Short: "Import a file into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				filename := args[0]
				if !force {
					imported, err := s.service.AlreadyImported(ctx, filename, capturedAt)
					if err != nil {
						return err
					}
					if imported {
						fmt.Fprintf(cmd.OutOrStdout(), "Skipping %s: already imported\n", filename)
						return nil
					}
				}

				record, err := s.store.AddRecord(ctx, filename, capturedAt)
				if err != nil {
					return err
				}
				if capturedAt != "" {
					importID := filename + "-" + capturedAt
					if err := s.service.SetImport(ctx, record.ID, "Xmp.darktable.image_id", importID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s as record %d\n", filename, record.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&capturedAt, "captured-at", "", "Capture timestamp as recorded by the camera")
	cmd.Flags().BoolVar(&force, "force", false, "Import even when a matching record exists")
	return cmd
}

func newRecordsListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cataloged records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				records, err := s.store.ListRecords(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rating := "-"
					if stars := record.Rating(); stars >= 0 {
						rating = strconv.Itoa(stars)
					}
					rows = append(rows, []string{
						strconv.FormatInt(record.ID, 10),
						record.Filename,
						record.CapturedAt,
						rating,
					})
				}
				out := cmd.OutOrStdout()
				headers := []string{"ID", "Filename", "Captured At", "Rating"}
				fmt.Fprintln(out, renderTable(headers, rows, isTerminal(out), 0, 3))
				return nil
			})
		},
	}
}

func newRecordsRateCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <stars>",
		Short: "Set a record's star rating (0-5, negative clears)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			stars, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				return s.store.SetRating(ctx, id, stars)
			})
		},
	}
}

func newRecordsTagCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <name>",
		Short: "Attach a tag to a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				return s.store.Tag(ctx, id, args[1])
			})
		},
	}
}

func newRecordsUntagCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <id> <name>",
		Short: "Detach a tag from a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				return s.store.Untag(ctx, id, args[1])
			})
		},
	}
}

func newRecordsLabelCommand(cmdCtx *commandContext) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "label <id> <color>",
		Short: "Attach or detach a color label (0-4)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			color, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid color label %q", args[1])
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				if remove {
					return s.store.RemoveColorLabel(ctx, id, color)
				}
				return s.store.SetColorLabel(ctx, id, color)
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Detach the label instead of attaching it")
	return cmd
}

func newRecordsSelectCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>...",
		Short: "Add records to the active selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseRecordIDs(args)
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				return s.store.Select(ctx, ids...)
			})
		},
	}
}

func newRecordsDeselectCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deselect <id>...",
		Short: "Remove records from the active selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseRecordIDs(args)
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				return s.store.Deselect(ctx, ids...)
			})
		},
	}
}

func newRecordsSelectionCommand(cmdCtx *commandContext) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "selection",
		Short: "Show or clear the active selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				if clear {
					return s.store.ClearSelection(ctx)
				}
				ids, err := s.store.SelectedRecords(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					fmt.Fprintln(out, "Selection is empty")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Empty the selection")
	return cmd
}

func parseRecordIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseRecordID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
