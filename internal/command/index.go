// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package command resolves mistyped command invocations. It indexes the
// CLI command tree, proposes corrections, and drives the interactive
// not-found workflow.
package command

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

// Separator joins command path segments into a command identifier, so
// `asyncapi config set` has the identifier `config:set`.
const Separator = ":"

// Index is a read-only view over the cobra command tree: identifiers,
// visibility, topics, and dispatch.
type Index struct {
	root    *cobra.Command
	exclude []glob.Glob
}

// NewIndex builds an index over root. excludePatterns are glob patterns
// (from the configuration document) removing identifiers from the visible
// set; an invalid pattern is logged and ignored.
func NewIndex(root *cobra.Command, excludePatterns []string) *Index {
	ix := &Index{root: root}
	for _, pattern := range excludePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			slog.Warn("ignoring invalid suggestion exclude pattern",
				"pattern", pattern,
				"error", err)
			continue
		}
		ix.exclude = append(ix.exclude, g)
	}
	return ix
}

// VisibleIDs returns the sorted identifiers of every visible command,
// including alias-derived identifiers, minus configured excludes.
func (ix *Index) VisibleIDs() []string {
	seen := make(map[string]struct{})
	ix.walk(ix.root, nil, seen)

	ids := make([]string, 0, len(seen))
	for id := range seen {
		if ix.excluded(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (ix *Index) walk(cmd *cobra.Command, path []string, seen map[string]struct{}) {
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "completion" {
			continue
		}
		names := append([]string{sub.Name()}, sub.Aliases...)
		for _, name := range names {
			id := strings.Join(append(path, name), Separator)
			seen[id] = struct{}{}
		}
		ix.walk(sub, append(path, sub.Name()), seen)
	}
}

func (ix *Index) excluded(id string) bool {
	for _, g := range ix.exclude {
		if g.Match(id) {
			return true
		}
	}
	return false
}

// HasTopic reports whether name is a top-level command with subcommands.
func (ix *Index) HasTopic(name string) bool {
	for _, sub := range ix.root.Commands() {
		if sub.Name() == name && sub.HasSubCommands() {
			return true
		}
	}
	return false
}

// RunCommand dispatches the identified command back through the CLI with
// the given argument vector.
func (ix *Index) RunCommand(ctx context.Context, id string, argv []string) error {
	args := append(strings.Split(id, Separator), argv...)
	ix.root.SetArgs(args)
	return ix.root.ExecuteContext(ctx)
}
