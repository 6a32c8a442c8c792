package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rescue/internal/config"
	"github.com/MikeSquared-Agency/rescue/internal/profile"
)

// cliContext carries the environment config and the persistent flags that
// override it.
type cliContext struct {
	cfg         config.Config
	profileName string
	profileFile string
	logLevel    string
	logger      *slog.Logger
}

func (c *cliContext) profile() (profile.Profile, error) {
	return profile.Resolve(c.profileName, c.profileFile)
}

func newRootCommand() *cobra.Command {
	ctx := &cliContext{cfg: config.Load()}

	rootCmd := &cobra.Command{
		Use:           "rescue",
		Short:         "Recover screenplay structure from badly scraped scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.logger = setupLogging(ctx.logLevel, ctx.cfg.LogFormat, ctx.cfg.LogFile, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.profileName, "profile", "p", ctx.cfg.Profile, "Built-in heuristic profile (rescue, direct)")
	flags.StringVar(&ctx.profileFile, "profile-file", ctx.cfg.ProfileFile, "YAML or TOML profile layered over the defaults")
	flags.StringVar(&ctx.logLevel, "log-level", ctx.cfg.LogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newMatchCommand(ctx))
	rootCmd.AddCommand(newProfilesCommand(ctx))

	return rootCmd
}
