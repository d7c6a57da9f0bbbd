// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/asyncapi/cli/internal/command"
)

// NewRootCmd creates the root command for the asyncapi CLI. Arguments
// that do not resolve to a subcommand fall through to the
// command-not-found workflow.
func NewRootCmd(app *App) *cobra.Command {
	cfg := &appConfig{}

	cmd := &cobra.Command{
		Use:   "asyncapi",
		Short: "CLI for working with AsyncAPI documents",
		Long: `The asyncapi CLI validates AsyncAPI documents and can be extended
with plugins that hook into its lifecycle.`,
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return app.Init(c.Context(), cfg)
		},
		PersistentPostRun: func(c *cobra.Command, _ []string) {
			app.Close(c.Context())
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				return c.Help()
			}
			index := command.NewIndex(c.Root(), app.Config.SuggestExclude)
			handler := command.NewNotFoundHandler(index, app.Hooks,
				command.WithHistory(app.History),
				command.WithConfig(app.Config))
			return handler.Handle(c.Context(), args[0], args[1:])
		},
	}

	cmd.PersistentFlags().StringVar(&cfg.configFile, "config", "", "config file path (default: discovered .asyncapi.yaml)")
	cmd.PersistentFlags().StringVar(&cfg.logFormat, "log-format", "text", "log format (text or json)")
	cmd.PersistentFlags().StringVar(&cfg.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cfg.flags = cmd.PersistentFlags()

	cmd.AddCommand(NewValidateCmd(app))
	cmd.AddCommand(NewConfigCmd(app))
	cmd.AddCommand(NewPluginsCmd(app))

	return cmd
}
