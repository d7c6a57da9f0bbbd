// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package sdk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtension struct {
	descriptor  Descriptor
	initErr     error
	initialized bool

	lastHook string
	lastArgs []any
	value    any
	err      error
}

func (f *fakeExtension) Describe() (Descriptor, error) { return f.descriptor, nil }

func (f *fakeExtension) Initialize() error {
	f.initialized = true
	return f.initErr
}

func (f *fakeExtension) InvokeHook(hook string, args []any) (any, error) {
	f.lastHook = hook
	f.lastArgs = args
	return f.value, f.err
}

func TestExtensionServerDescribe(t *testing.T) {
	ext := &fakeExtension{descriptor: Descriptor{
		Name:    "changelog",
		Version: "1.2.0",
		Subscriptions: []HookSubscription{
			{Hook: "generate:complete", Priority: 5},
		},
	}}
	srv := &extensionServer{impl: ext}

	var resp Descriptor
	require.NoError(t, srv.Describe(struct{}{}, &resp))
	assert.Equal(t, "changelog", resp.Name)
	require.Len(t, resp.Subscriptions, 1)
	assert.Equal(t, "generate:complete", resp.Subscriptions[0].Hook)
}

func TestExtensionServerInitialize(t *testing.T) {
	ext := &fakeExtension{}
	srv := &extensionServer{impl: ext}

	require.NoError(t, srv.Initialize(struct{}{}, &struct{}{}))
	assert.True(t, ext.initialized)
}

func TestExtensionServerInvokeHook(t *testing.T) {
	ext := &fakeExtension{value: "ok"}
	srv := &extensionServer{impl: ext}

	var resp InvokeResponse
	req := InvokeRequest{Hook: "validate:after", Args: []any{"spec.yaml", true}}
	require.NoError(t, srv.InvokeHook(req, &resp))

	assert.Equal(t, "validate:after", ext.lastHook)
	assert.Equal(t, []any{"spec.yaml", true}, ext.lastArgs)
	assert.Equal(t, "ok", resp.Value)
	assert.Empty(t, resp.Err)
}

func TestExtensionServerInvokeHookError(t *testing.T) {
	ext := &fakeExtension{err: errors.New("boom")}
	srv := &extensionServer{impl: ext}

	var resp InvokeResponse
	require.NoError(t, srv.InvokeHook(InvokeRequest{Hook: "error"}, &resp))
	assert.Equal(t, "boom", resp.Err)
}

func TestExtensionPluginServerRequiresImpl(t *testing.T) {
	p := &ExtensionPlugin{}
	_, err := p.Server(nil)
	require.Error(t, err)
}
