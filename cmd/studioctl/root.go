package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "studioctl",
		Short:         "Manage class drafts and video uploads for the studio API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (default $XDG_CONFIG_HOME/studio/studioctl.toml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "Studio API base URL")
	pf.StringVar(&flags.token, "token", "", "Bearer token for the studio API")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newRemoveVideoCommand(ctx))
	rootCmd.AddCommand(newSaveCommand(ctx))

	return rootCmd
}
