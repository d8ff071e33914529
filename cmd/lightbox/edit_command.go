package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lightbox/internal/undo"
)

// newEditCommand starts an interactive editing session. Undo history lives
// for the lifetime of the session, so edits made here can be stepped back
// and forward before the catalog lock is released.
func newEditCommand(cmdCtx *commandContext) *cobra.Command {
	var recordID int64
	var useSelection bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit attributes interactively with undo and redo",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(recordID, useSelection)
			if err != nil {
				return err
			}
			return cmdCtx.withSession(func(ctx context.Context, s *session) error {
				return runEditSession(ctx, s, target, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().Int64VarP(&recordID, "record", "r", 0, "Record id to edit")
	cmd.Flags().BoolVarP(&useSelection, "selection", "s", false, "Edit the active selection")
	return cmd
}

func runEditSession(ctx context.Context, s *session, target int64, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Interactive edit session. Type 'help' for commands, 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "quit", "exit":
			return nil
		case "help":
			printEditHelp(out)
		case "get":
			if rest == "" {
				fmt.Fprintln(out, "usage: get <key>")
				continue
			}
			values, err := s.service.Get(ctx, target, rest)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			if len(values) == 0 {
				fmt.Fprintln(out, "(unset)")
				continue
			}
			for _, value := range values {
				fmt.Fprintln(out, value)
			}
		case "set":
			key, value, _ := strings.Cut(rest, " ")
			if key == "" {
				fmt.Fprintln(out, "usage: set <key> [value]")
				continue
			}
			if err := s.service.Set(ctx, target, key, value, true); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		case "clear":
			ids, err := targetRecords(ctx, s, target)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			if err := s.service.Clear(ctx, ids, true); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		case "undo":
			label, err := s.service.History().Undo(ctx)
			switch {
			case errors.Is(err, undo.ErrNothingToUndo):
				fmt.Fprintln(out, "nothing to undo")
			case err != nil:
				fmt.Fprintln(out, "error:", err)
			default:
				fmt.Fprintln(out, "undone:", label)
			}
		case "redo":
			label, err := s.service.History().Redo(ctx)
			switch {
			case errors.Is(err, undo.ErrNothingToRedo):
				fmt.Fprintln(out, "nothing to redo")
			case err != nil:
				fmt.Fprintln(out, "error:", err)
			default:
				fmt.Fprintln(out, "redone:", label)
			}
		case "history":
			undoLabels, redoLabels := s.service.History().Labels()
			if len(undoLabels) == 0 && len(redoLabels) == 0 {
				fmt.Fprintln(out, "history is empty")
				continue
			}
			for _, label := range undoLabels {
				fmt.Fprintln(out, "  done:", label)
			}
			for _, label := range redoLabels {
				fmt.Fprintln(out, "  redoable:", label)
			}
		default:
			fmt.Fprintf(out, "unknown command %q; type 'help'\n", verb)
		}
	}
}

func printEditHelp(out io.Writer) {
	fmt.Fprint(out, `Commands:
  get <key>          read the values stored under a key
  set <key> [value]  write a value; omit the value to delete the key
  clear              remove all visible attributes
  undo               step the last edit back
  redo               reapply an undone edit
  history            show the undo and redo stacks
  quit               end the session
`)
}
