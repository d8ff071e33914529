package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lightbox/internal/meta"
)

func newMetaCommand(cmdCtx *commandContext) *cobra.Command {
	metaCmd := &cobra.Command{
		Use:   "meta",
		Short: "Read and edit record attributes",
	}

	metaCmd.AddCommand(newMetaGetCommand(cmdCtx))
	metaCmd.AddCommand(newMetaSetCommand(cmdCtx))
	metaCmd.AddCommand(newMetaClearCommand(cmdCtx))
	metaCmd.AddCommand(newMetaListCommand(cmdCtx))

	return metaCmd
}

func newMetaListCommand(cmdCtx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "list <record-id>",
		Short: "List the attributes stored on a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				snapshot, err := s.service.ReadSnapshot(ctx, id)
				if err != nil {
					return err
				}
				registry := s.service.Registry()
				var rows [][]string
				for _, entry := range snapshot {
					def, ok := registry.ByID(entry.KeyID)
					if !ok {
						continue
					}
					if !showAll && !def.Visible {
						continue
					}
					rows = append(rows, []string{def.Tagname, def.DisplayName, entry.Value})
				}
				out := cmd.OutOrStdout()
				headers := []string{"Tagname", "Display Name", "Value"}
				fmt.Fprintln(out, renderTable(headers, rows, isTerminal(out)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include hidden and internal keys")
	return cmd
}

func newMetaGetCommand(cmdCtx *commandContext) *cobra.Command {
	var recordID int64
	var useSelection bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Read the values stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(recordID, useSelection)
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				values, err := s.service.Get(ctx, target, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, value := range values {
					fmt.Fprintln(out, value)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&recordID, "record", "r", 0, "Record id to read")
	cmd.Flags().BoolVarP(&useSelection, "selection", "s", false, "Read across the active selection")
	return cmd
}

func newMetaSetCommand(cmdCtx *commandContext) *cobra.Command {
	var recordID int64
	var useSelection bool
	var replace bool

	cmd := &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Write key/value pairs to a record or the selection",
		Long: `Write key/value pairs to a record or the active selection.

An empty value deletes the key. With --replace, keys not named on the
command line are deleted as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(recordID, useSelection)
			if err != nil {
				return err
			}
			pairs, err := parseKeyValues(args)
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				ids, err := targetRecords(ctx, s, target)
				if err != nil {
					return err
				}
				return s.service.SetList(ctx, ids, pairs, replace, false)
			})
		},
	}

	cmd.Flags().Int64VarP(&recordID, "record", "r", 0, "Record id to edit")
	cmd.Flags().BoolVarP(&useSelection, "selection", "s", false, "Edit the active selection")
	cmd.Flags().BoolVar(&replace, "replace", false, "Drop keys not listed on the command line")
	return cmd
}

func newMetaClearCommand(cmdCtx *commandContext) *cobra.Command {
	var recordID int64
	var useSelection bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all visible attributes from a record or the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(recordID, useSelection)
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				ids, err := targetRecords(ctx, s, target)
				if err != nil {
					return err
				}
				return s.service.Clear(ctx, ids, false)
			})
		},
	}

	cmd.Flags().Int64VarP(&recordID, "record", "r", 0, "Record id to clear")
	cmd.Flags().BoolVarP(&useSelection, "selection", "s", false, "Clear the active selection")
	return cmd
}

// targetRecords expands the record/selection target into explicit ids for
// the list-based service calls.
func targetRecords(ctx context.Context, s *session, target int64) ([]int64, error) {
	if target != meta.NoRecord {
		return []int64{target}, nil
	}
	ids, err := s.store.SelectedRecords(ctx)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func parseKeyValues(args []string) ([]meta.KeyValue, error) {
	pairs := make([]meta.KeyValue, 0, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid pair %q (want key=value)", arg)
		}
		pairs = append(pairs, meta.KeyValue{Tagname: key, Value: value})
	}
	return pairs, nil
}
