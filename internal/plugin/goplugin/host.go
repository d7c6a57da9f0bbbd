// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package goplugin provides a Host implementation for binary plugins
// using HashiCorp's go-plugin system over net/rpc.
package goplugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/sethvargo/go-retry"

	"github.com/asyncapi/cli/internal/hook"
	"github.com/asyncapi/cli/internal/plugin"
	"github.com/asyncapi/cli/pkg/sdk"
)

// handshakeBackoff is the initial delay between handshake attempts.
// Plugin processes occasionally need a moment to bind their listener.
const handshakeBackoff = 100 * time.Millisecond

// handshakeAttempts bounds retries; after this the candidate is skipped.
const handshakeAttempts = 3

// Sentinel errors for programmatic error checking.
var (
	// ErrHostClosed is returned when operations are attempted on a closed host.
	ErrHostClosed = errors.New("host is closed")
)

// Compile-time interface check.
var _ plugin.Host = (*Host)(nil)

// PluginClient wraps go-plugin client for testability.
type PluginClient interface {
	// Client returns the client protocol after the handshake completes.
	Client() (hashiplug.ClientProtocol, error)
	// Kill terminates the plugin process.
	Kill()
}

// ClientFactory creates plugin clients.
type ClientFactory interface {
	// NewClient creates a client for the given executable path.
	NewClient(execPath string) PluginClient
}

// DefaultClientFactory creates real go-plugin clients.
type DefaultClientFactory struct{}

// NewClient creates a real go-plugin client.
func (f *DefaultClientFactory) NewClient(execPath string) PluginClient {
	return hashiplug.NewClient(&hashiplug.ClientConfig{
		HandshakeConfig:  sdk.Handshake,
		Plugins:          sdk.PluginMap,
		Cmd:              exec.Command(execPath), // #nosec G204 -- execPath resolved from plugin manifest; manifests validated during discovery
		AllowedProtocols: []hashiplug.Protocol{hashiplug.ProtocolNetRPC},
	})
}

// Host manages binary plugins via HashiCorp go-plugin. Each loaded plugin
// is a child process that stays alive until Close.
type Host struct {
	clientFactory ClientFactory
	clients       map[string]PluginClient
	mu            sync.Mutex
	closed        bool
}

// NewHost creates a new binary plugin host.
func NewHost() *Host {
	return &Host{
		clientFactory: &DefaultClientFactory{},
		clients:       make(map[string]PluginClient),
	}
}

// NewHostWithFactory creates a host with a custom client factory (for testing).
// Panics if factory is nil.
func NewHostWithFactory(factory ClientFactory) *Host {
	if factory == nil {
		panic("goplugin: factory cannot be nil")
	}
	return &Host{
		clientFactory: factory,
		clients:       make(map[string]PluginClient),
	}
}

// Load starts the plugin executable named by the manifest and builds a
// descriptor around its Extension endpoint. The process is killed on any
// failure so a broken plugin never leaks a child.
func (h *Host) Load(ctx context.Context, manifest *plugin.Manifest, dir string) (*plugin.Plugin, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}

	execPath := filepath.Join(dir, manifest.Executable)
	if _, err := os.Stat(execPath); err != nil {
		return nil, fmt.Errorf("plugin executable not found: %s: %w", execPath, err)
	}

	client := h.clientFactory.NewClient(execPath)

	ext, err := h.dispense(ctx, client)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to connect to plugin %s: %w", manifest.Name, err)
	}

	desc, err := ext.Describe()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("plugin %s Describe failed: %w", manifest.Name, err)
	}

	h.clients[manifest.Name] = client

	return &plugin.Plugin{
		Name:        manifest.Name,
		Version:     manifest.Version,
		Description: manifest.Description,
		Register: func(api *plugin.HostAPI) error {
			for _, sub := range desc.Subscriptions {
				registerSubscription(api, manifest.Name, ext, sub)
			}
			return nil
		},
		Initialize: func(context.Context) error {
			return ext.Initialize()
		},
	}, nil
}

// dispense completes the handshake, retrying briefly while the child
// process comes up, and returns the remote Extension.
func (h *Host) dispense(ctx context.Context, client PluginClient) (sdk.Extension, error) {
	var proto hashiplug.ClientProtocol
	backoff := retry.WithMaxRetries(handshakeAttempts, retry.NewExponential(handshakeBackoff))
	err := retry.Do(ctx, backoff, func(context.Context) error {
		var cerr error
		proto, cerr = client.Client()
		if cerr != nil {
			return retry.RetryableError(cerr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw, err := proto.Dispense(sdk.ExtensionName)
	if err != nil {
		return nil, err
	}

	ext, ok := raw.(sdk.Extension)
	if !ok {
		return nil, errors.New("dispensed value does not implement Extension")
	}
	return ext, nil
}

// registerSubscription wires one declared hook subscription into the
// manager, bridging the call over RPC.
func registerSubscription(api *plugin.HostAPI, name string, ext sdk.Extension, sub sdk.HookSubscription) {
	opts := []hook.Option{hook.WithPlugin(name)}
	if sub.Priority != 0 {
		opts = append(opts, hook.WithPriority(sub.Priority))
	}
	if sub.TimeoutMs > 0 {
		opts = append(opts, hook.WithTimeout(time.Duration(sub.TimeoutMs)*time.Millisecond))
	}
	hookName := sub.Hook
	api.Hooks.Register(hookName, func(_ context.Context, args ...any) (any, error) {
		return ext.InvokeHook(hookName, wireArgs(args))
	}, opts...)
}

// wireArgs reduces hook arguments to gob-encodable values. Shared hook
// context is flattened to a snapshot map; anything else unknown to gob
// becomes its string form.
func wireArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case nil, bool, int, int64, float64, string, []string, []any, map[string]any:
			out[i] = v
		case *hook.Context:
			out[i] = v.Snapshot()
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// Close kills every plugin process.
func (h *Host) Close(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		c.Kill()
	}
	h.closed = true
	clear(h.clients)
	return nil
}
