// Package cli holds the shamewizard cobra commands
package cli

import (
	"github.com/spf13/cobra"

	"shamewizard/internal/core/version"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	// ConfigPath overrides BOT_CONFIG_PATH
	ConfigPath string
	// RulesPath overrides BOT_RULES_PATH
	RulesPath string
}

// NewRootCommand builds the shamewizard command tree. With no subcommand it runs the bot
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	run := NewRunCommand(opts)

	cmd := &cobra.Command{
		Use:           "shamewizard",
		Short:         "Reply to tracked Reddit users with what they said before",
		Version:       version.Tag(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run.RunE,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "bot config file (default $BOT_CONFIG_PATH or config/config.json)")
	cmd.PersistentFlags().StringVar(&opts.RulesPath, "rules", "", "tracked rules file (default $BOT_RULES_PATH or config/tracked.json)")

	cmd.AddCommand(run)
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	return cmd
}
