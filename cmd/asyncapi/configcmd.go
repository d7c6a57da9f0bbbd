// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/asyncapi/cli/internal/config"
)

// NewConfigCmd creates the config subcommand with get/set.
func NewConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write the project configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			value := app.Config.Get(args[0])
			if value == nil {
				return fmt.Errorf("key %s is not set", args[0])
			}
			c.Printf("%v\n", value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if app.Config.Path() == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to resolve working directory: %w", err)
				}
				app.Config.SetPath(filepath.Join(cwd, config.FileName))
			}
			if err := app.Config.Set(args[0], args[1]); err != nil {
				return err
			}
			return app.Config.Save()
		},
	})

	return cmd
}
