package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shamewizard/internal/core/message"
	"shamewizard/internal/platform/config"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/services/replybot/module"
	"shamewizard/internal/services/replybot/repo"
)

// NewRenderCommand creates the render command: print the reply each matching rule would produce
func NewRenderCommand(ro *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:          "render",
		Short:        "Print the replies a tracked user would get",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quietLogs(cmd.ErrOrStderr())
			return runRender(cmd, ro, user, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "tracked account name")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runRender(cmd *cobra.Command, ro *RootOptions, user string, out io.Writer) error {
	o := loadOptions(config.New(), ro)
	s, err := module.LoadSettings(o.SettingsPath)
	if err != nil {
		return err
	}
	set, err := repo.NewRuleFile(o.RulesPath).Load(cmd.Context())
	if err != nil {
		return err
	}

	matches := set.Match(user)
	if len(matches) == 0 {
		return perr.NotFoundf("no tracked rules for %s in %s", user, o.RulesPath)
	}
	for i, r := range matches {
		if i > 0 {
			fmt.Fprintln(out, "---")
		}
		fmt.Fprintln(out, message.Render(s.Bot.Message, message.Vars{User: r.User, URL: r.URL, Comment: r.Comment}))
	}
	return nil
}
