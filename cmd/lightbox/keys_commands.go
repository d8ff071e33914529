package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lightbox/internal/meta"
)

func newKeysCommand(cmdCtx *commandContext) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the attribute key catalog",
	}

	keysCmd.AddCommand(newKeysListCommand(cmdCtx))
	keysCmd.AddCommand(newKeysAddCommand(cmdCtx))
	keysCmd.AddCommand(newKeysImportCommand(cmdCtx))

	return keysCmd
}

func newKeysListCommand(cmdCtx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attribute keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				registry := s.service.Registry()
				rows := make([][]string, 0, len(registry.Keys()))
				for _, def := range registry.Keys() {
					if !showAll && !def.Visible {
						continue
					}
					imported, err := registry.ImportEnabled(ctx, def)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						strconv.FormatUint(uint64(def.ID), 10),
						def.Tagname,
						def.DisplayName,
						yesNo(def.Visible),
						yesNo(def.Internal),
						yesNo(imported),
					})
				}
				out := cmd.OutOrStdout()
				headers := []string{"ID", "Tagname", "Display Name", "Visible", "Internal", "Import"}
				fmt.Fprintln(out, renderTable(headers, rows, isTerminal(out), 0))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include hidden and internal keys")
	return cmd
}

func newKeysAddCommand(cmdCtx *commandContext) *cobra.Command {
	var displayName string
	var hidden bool
	var private bool
	var order int32

	cmd := &cobra.Command{
		Use:   "add <tagname>",
		Short: "Register a new attribute key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				def := meta.KeyDefinition{
					Tagname:      args[0],
					DisplayName:  displayName,
					Visible:      !hidden,
					Private:      private,
					DisplayOrder: order,
				}
				if def.DisplayName == "" {
					def.DisplayName = meta.DeriveDisplayName(def.Subkey())
				}
				if err := s.service.Registry().Insert(ctx, &def); err != nil {
					if errors.Is(err, meta.ErrKeyExists) {
						return fmt.Errorf("key %s already exists", def.Tagname)
					}
					return err
				}
				s.service.Registry().Resort()
				fmt.Fprintf(cmd.OutOrStdout(), "Added key %s (id %d)\n", def.Tagname, def.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable name (derived from the tagname when empty)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Hide the key from default listings and clears")
	cmd.Flags().BoolVar(&private, "private", false, "Mark the key as private")
	cmd.Flags().Int32Var(&order, "order", 100, "Display order position")
	return cmd
}

func newKeysImportCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <tagname> <on|off>",
		Short: "Toggle whether a key is written during record import",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			switch args[1] {
			case "on", "true":
				value = "true"
			case "off", "false":
				value = "false"
			default:
				return fmt.Errorf("invalid import state %q (want on or off)", args[1])
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				def, ok := s.service.Registry().ByTagname(args[0])
				if !ok {
					return fmt.Errorf("unknown key %s", args[0])
				}
				if def.Internal {
					return fmt.Errorf("key %s is internal and always imported", def.Tagname)
				}
				return s.store.SetSetting(ctx, meta.ImportSettingName(def.Subkey()), value)
			})
		},
	}
}
