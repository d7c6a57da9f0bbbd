// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewPluginsCmd creates the plugins subcommand listing loaded plugins and
// hook chains.
func NewPluginsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List loaded plugins and registered hooks",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			plugins := app.Registry.AllPlugins()
			if len(plugins) == 0 {
				c.Println("no plugins loaded")
			}
			for _, p := range plugins {
				c.Printf("%s %s (%s)", p.Name, p.Version, p.Source)
				if p.Description != "" {
					c.Printf(" - %s", p.Description)
				}
				c.Println()
			}

			names := app.Hooks.Names()
			if len(names) == 0 {
				return nil
			}
			c.Println("\nhooks:")
			for _, name := range names {
				regs := app.Hooks.Handlers(name)
				c.Printf("  %s (%d handler", name, len(regs))
				if len(regs) != 1 {
					c.Print("s")
				}
				c.Println(")")
			}
			return nil
		},
	}
}
