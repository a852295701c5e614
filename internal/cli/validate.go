package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/logger"
	pstrings "shamewizard/internal/platform/strings"
)

// NewValidateCommand creates the validate command: load config, rules and state, print a summary
func NewValidateCommand(ro *RootOptions) *cobra.Command {
	var online bool
	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Check the bot config, tracked rules and stored state",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quietLogs(cmd.ErrOrStderr())
			return runValidate(cmd.Context(), ro, online, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "also log in to Reddit and check the account")
	return cmd
}

func runValidate(ctx context.Context, ro *RootOptions, online bool, out io.Writer) error {
	b, err := openBot(ctx, ro, nil)
	if err != nil {
		return err
	}
	defer b.close(ctx)

	if err := b.store.Guard(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "state backend")
	}
	svc := b.mod.Service()
	if err := svc.Boot(ctx); err != nil {
		return err
	}
	st := svc.Stats()

	fmt.Fprintf(out, "config:   %s\n", b.opts.SettingsPath)
	fmt.Fprintf(out, "account:  %s\n", b.settings.Credentials.Username)
	fmt.Fprintf(out, "agent:    %s\n", b.settings.Credentials.UserAgent)
	fmt.Fprintf(out, "cooldown: %s\n", st.Cooldown)
	fmt.Fprintf(out, "message:  %d line(s)\n", len(b.settings.Bot.Message))
	fmt.Fprintf(out, "dry run:  %t\n", st.DryRun)
	fmt.Fprintf(out, "rules:    %s (%d rules, %d users)\n", b.mod.RulesPath(), st.RulesLoaded, st.TrackedUsers)
	fmt.Fprintf(out, "state:    %s (%d comments replied)\n", st.StateBackend, st.LedgerSize)

	if online {
		me, err := b.mod.Client().Me(ctx)
		if err != nil {
			return perr.Wrap(err, perr.CodeOf(err), "reddit login")
		}
		if !pstrings.EqualFold(me.Name, b.settings.Credentials.Username) {
			return perr.Validationf("logged in as %s, config says %s", me.Name, b.settings.Credentials.Username)
		}
		fmt.Fprintf(out, "reddit:   logged in as %s\n", me.Name)
	}
	fmt.Fprintln(out, "ok")
	return nil
}

// quietLogs keeps one-shot commands readable: warnings and up, on stderr
func quietLogs(w io.Writer) {
	logger.Init(logger.Options{Level: "warn", Format: "console", Writer: w})
}
