package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/five82/quill/internal/app"
	"github.com/five82/quill/internal/draft"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	ephemeral  bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "quill",
		Short: "A small terminal notes editor",
		Long: `Quill keeps a short list of notes in a single local store.
Run without a command to open the editor.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: flags.configPath,
				Ephemeral:  flags.ephemeral,
				Verbose:    flags.verbose,
			})
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config.toml (optional)")
	root.PersistentFlags().BoolVar(&flags.ephemeral, "ephemeral", false, "keep notes in memory only")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newListCmd(flags),
		newNewCmd(flags),
		newShowCmd(flags),
		newDeleteCmd(flags),
		newClearCmd(flags),
		newThemeCmd(flags),
		newCopyCmd(flags),
	)
	return root
}

// withSession opens a headless session that logs to stderr and saves only
// when told to, runs fn and closes the session, reporting a failed save.
func withSession(cmd *cobra.Command, flags *globalFlags, fn func(*app.Session) error) error {
	manual := draft.PolicyManual
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := app.Open(ctx, app.Options{
		ConfigPath: flags.configPath,
		Ephemeral:  flags.ephemeral,
		Verbose:    flags.verbose,
		Quiet:      true,
		LogWriter:  cmd.ErrOrStderr(),
		Policy:     &manual,
	}, nil)
	if err != nil {
		return err
	}

	runErr := fn(session)
	closeErr := session.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	return session.SaveErr()
}
