// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package main implements a sample binary plugin. It subscribes to the
// generate:complete hook and tallies generated artifacts.
//
// Build and install:
//
//	go build -o release-tracker ./plugins/release-tracker
//	mkdir -p "$XDG_DATA_HOME/asyncapi/plugins/asyncapi-cli-plugin-release-tracker"
//	cp release-tracker plugin.yaml "$XDG_DATA_HOME/asyncapi/plugins/asyncapi-cli-plugin-release-tracker/"
package main

import (
	"fmt"

	"github.com/asyncapi/cli/pkg/sdk"
)

type tracker struct {
	generated int
}

func (t *tracker) Describe() (sdk.Descriptor, error) {
	return sdk.Descriptor{
		Name:        "release-tracker",
		Version:     "1.0.0",
		Description: "Tracks generated artifacts across a run",
		Subscriptions: []sdk.HookSubscription{
			{Hook: "generate:complete", Priority: 5},
		},
	}, nil
}

func (t *tracker) Initialize() error {
	t.generated = 0
	return nil
}

func (t *tracker) InvokeHook(hook string, args []any) (any, error) {
	if hook != "generate:complete" {
		return nil, fmt.Errorf("unexpected hook %s", hook)
	}
	t.generated++
	return t.generated, nil
}

func main() {
	sdk.Serve(&tracker{})
}
