package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/quill/internal/app"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, flags, func(s *app.Session) error {
				state := s.Controller.View().State
				out := cmd.OutOrStdout()
				for _, n := range state.Notes {
					marker := " "
					if n.ID == state.SelectedID {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s  %s\n", marker, n.ID, n.Title)
				}
				return nil
			})
		},
	}
}

func newNewCmd(flags *globalFlags) *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a note and select it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *app.Session) error {
				ctrl := s.Controller
				ctrl.Add()
				if len(args) == 1 {
					ctrl.SetTitle(args[0])
				}
				if content != "" {
					ctrl.SetContent(content)
				}
				ctrl.Save()
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", ctrl.View().Draft.NoteID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "note body")
	return cmd
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *app.Session) error {
				n, ok := s.Controller.View().State.Find(args[0])
				if !ok {
					return fmt.Errorf("note %s: %w", args[0], errUnknownNote)
				}
				fmt.Fprintln(cmd.OutOrStdout(), n.Text())
				return nil
			})
		},
	}
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *app.Session) error {
				if !s.Controller.Delete(args[0]).Applied {
					return fmt.Errorf("note %s: %w", args[0], errUnknownNote)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newClearCmd(flags *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear notes without --yes")
			}
			return withSession(cmd, flags, func(s *app.Session) error {
				s.Controller.ClearAll()
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all notes")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal")
	return cmd
}

var errUnknownNote = errors.New("not found")
