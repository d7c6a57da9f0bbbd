// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/asyncapi/cli/internal/hook"
)

// documentSchema is the structural subset of the AsyncAPI meta-schema the
// CLI checks locally: required top-level fields and their shapes. Full
// semantic validation is left to plugins hooking validate:after.
const documentSchema = `{
  "type": "object",
  "required": ["asyncapi", "info"],
  "properties": {
    "asyncapi": {"type": "string", "pattern": "^[2-3]\\."},
    "info": {
      "type": "object",
      "required": ["title", "version"],
      "properties": {
        "title": {"type": "string"},
        "version": {"type": "string"}
      }
    },
    "channels": {"type": "object"},
    "servers": {"type": "object"},
    "components": {"type": "object"}
  }
}`

var (
	documentSchemaOnce     sync.Once
	compiledDocumentSchema *jschema.Schema
	documentSchemaErr      error
)

func loadDocumentSchema() (*jschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		var raw any
		if err := json.Unmarshal([]byte(documentSchema), &raw); err != nil {
			documentSchemaErr = err
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("asyncapi.schema.json", raw); err != nil {
			documentSchemaErr = err
			return
		}
		compiledDocumentSchema, documentSchemaErr = c.Compile("asyncapi.schema.json")
	})
	return compiledDocumentSchema, documentSchemaErr
}

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an AsyncAPI document",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runValidate(c.Context(), app, c, args[0])
		},
	}
}

func runValidate(ctx context.Context, app *App, cmd *cobra.Command, path string) error {
	shared := app.Hooks.SharedContext()
	shared.Set("file", path)

	app.Hooks.ExecuteWithContext(ctx, hook.ParseBefore)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	shared.Set("document", doc)
	app.Hooks.ExecuteWithContext(ctx, hook.ParseAfter)

	app.Hooks.ExecuteWithContext(ctx, hook.ValidateBefore)
	sch, err := loadDocumentSchema()
	if err != nil {
		return fmt.Errorf("failed to compile document schema: %w", err)
	}
	verr := sch.Validate(normalizeYAML(doc))
	if verr != nil {
		shared.Set("validation_error", verr.Error())
	} else {
		shared.Set("validation_error", nil)
	}
	app.Hooks.ExecuteWithContext(ctx, hook.ValidateAfter)

	if verr != nil {
		return fmt.Errorf("%s is not a valid AsyncAPI document: %w", path, verr)
	}
	cmd.Printf("%s is valid\n", path)
	return nil
}

// normalizeYAML converts YAML-decoded values to the JSON-typed shapes the
// schema validator expects.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return val
	}
}
