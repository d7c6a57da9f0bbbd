// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package sdk is the contract between the CLI and binary plugins. Plugin
// authors implement Extension and call Serve from main(); the CLI side
// lives in internal/plugin/goplugin. Host and plugin must share this
// package so the handshake and wire types never drift.
package sdk

import (
	"encoding/gob"
	"errors"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// Handshake guards against the CLI executing arbitrary binaries that do
// not speak the plugin protocol. It is not a security boundary: plugins
// run with full process privileges.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ASYNCAPI_CLI_PLUGIN",
	MagicCookieValue: "a2f1c7e0",
}

// ExtensionName is the dispense key for the extension plugin.
const ExtensionName = "extension"

// HookSubscription declares one hook a plugin wants to handle.
type HookSubscription struct {
	Hook      string
	Priority  int
	TimeoutMs int
}

// Descriptor describes a plugin to the host.
type Descriptor struct {
	Name          string
	Version       string
	Description   string
	Subscriptions []HookSubscription
}

// Extension is implemented by binary plugins.
type Extension interface {
	// Describe returns the plugin descriptor, including its hook
	// subscriptions.
	Describe() (Descriptor, error)

	// Initialize runs once after all plugins are registered.
	Initialize() error

	// InvokeHook handles one hook invocation. Args hold the values the
	// host passed to the hook, already reduced to gob-encodable types.
	InvokeHook(hook string, args []any) (any, error)
}

func init() {
	// Hook arguments travel as []any over gob; register the concrete
	// types the host is allowed to send.
	gob.Register([]any{})
	gob.Register(map[string]any{})
	gob.Register([]string{})
}

// InvokeRequest is the wire form of an InvokeHook call.
type InvokeRequest struct {
	Hook string
	Args []any
}

// InvokeResponse is the wire form of an InvokeHook result.
type InvokeResponse struct {
	Value any
	Err   string
}

// extensionServer hosts an Extension over net/rpc (plugin process side).
type extensionServer struct {
	impl Extension
}

func (s *extensionServer) Describe(_ struct{}, resp *Descriptor) error {
	d, err := s.impl.Describe()
	if err != nil {
		return err
	}
	*resp = d
	return nil
}

func (s *extensionServer) Initialize(_ struct{}, _ *struct{}) error {
	return s.impl.Initialize()
}

func (s *extensionServer) InvokeHook(req InvokeRequest, resp *InvokeResponse) error {
	value, err := s.impl.InvokeHook(req.Hook, req.Args)
	resp.Value = value
	if err != nil {
		resp.Err = err.Error()
	}
	return nil
}

// ExtensionClient calls a remote Extension over net/rpc (host side).
type ExtensionClient struct {
	client *rpc.Client
}

// Compile-time interface check.
var _ Extension = (*ExtensionClient)(nil)

// Describe implements Extension.
func (c *ExtensionClient) Describe() (Descriptor, error) {
	var resp Descriptor
	err := c.client.Call("Plugin.Describe", struct{}{}, &resp)
	return resp, err
}

// Initialize implements Extension.
func (c *ExtensionClient) Initialize() error {
	return c.client.Call("Plugin.Initialize", struct{}{}, &struct{}{})
}

// InvokeHook implements Extension.
func (c *ExtensionClient) InvokeHook(hook string, args []any) (any, error) {
	var resp InvokeResponse
	if err := c.client.Call("Plugin.InvokeHook", InvokeRequest{Hook: hook, Args: args}, &resp); err != nil {
		return nil, err
	}
	if resp.Err != "" {
		return resp.Value, errors.New(resp.Err)
	}
	return resp.Value, nil
}

// ExtensionPlugin is the go-plugin glue shared by host and plugin.
type ExtensionPlugin struct {
	// Impl is set on the plugin side only.
	Impl Extension
}

// Server returns the RPC server for this plugin (plugin process side).
func (p *ExtensionPlugin) Server(_ *goplugin.MuxBroker) (any, error) {
	if p.Impl == nil {
		return nil, errors.New("sdk: extension implementation is nil")
	}
	return &extensionServer{impl: p.Impl}, nil
}

// Client returns the RPC client for this plugin (host side).
func (p *ExtensionPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (any, error) {
	return &ExtensionClient{client: c}, nil
}

// PluginMap is the map of plugins the host can dispense.
var PluginMap = map[string]goplugin.Plugin{
	ExtensionName: &ExtensionPlugin{},
}

// Serve starts the plugin server. Call this from a plugin's main().
// It never returns.
func Serve(impl Extension) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			ExtensionName: &ExtensionPlugin{Impl: impl},
		},
	})
}
