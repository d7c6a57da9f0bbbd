// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package main is the entry point for the asyncapi CLI.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &App{}
	cmd := NewRootCmd(app)
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
