package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/quill/internal/app"
	"github.com/five82/quill/internal/notes"
)

func newThemeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "theme <dark|light>",
		Short:     "Set the editor theme",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(notes.ThemeDark), string(notes.ThemeLight)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *app.Session) error {
				theme := s.Controller.SetTheme(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", theme)
				return nil
			})
		},
	}
}

func newCopyCmd(flags *globalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "copy [id]",
		Short: "Copy a note, or every note, to the clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("pass a note id or --all")
			}
			return withSession(cmd, flags, func(s *app.Session) error {
				ctx := cmd.Context()
				if all {
					if err := s.Controller.CopyAll(ctx); err != nil {
						return fmt.Errorf("copy notes: %w", err)
					}
				} else if err := s.Controller.CopyNote(ctx, args[0]); err != nil {
					return fmt.Errorf("copy note %s: %w", args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Copied to clipboard")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "copy every note")
	return cmd
}
