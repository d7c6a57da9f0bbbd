// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/asyncapi/cli/internal/command"
	"github.com/asyncapi/cli/internal/config"
	"github.com/asyncapi/cli/internal/hook"
	"github.com/asyncapi/cli/internal/logging"
	"github.com/asyncapi/cli/internal/plugin"
	"github.com/asyncapi/cli/internal/plugin/goplugin"
	"github.com/asyncapi/cli/internal/plugin/lua"
	"github.com/asyncapi/cli/internal/xdg"
)

// appConfig holds the global flag values. flags carries the root
// command's persistent flag set so changed flags override file values
// in the configuration document.
type appConfig struct {
	configFile string
	logFormat  string
	logLevel   string
	flags      *pflag.FlagSet
}

// App wires the long-lived subsystems: configuration document, hook
// manager, plugin registry, and the plugin hosts. It is initialized once
// by the root command's PersistentPreRunE.
type App struct {
	Config   *config.Document
	Hooks    *hook.Manager
	Registry *plugin.Registry
	History  *config.History

	luaHost *lua.Host
	binHost *goplugin.Host

	initOnce    sync.Once
	metricsOnce sync.Once
}

// Init builds the application state: logging, config discovery, hook
// scripts, and the full plugin-loading pipeline. Safe to call more than
// once; only the first call does work.
func (a *App) Init(ctx context.Context, cfg *appConfig) error {
	var err error
	a.initOnce.Do(func() {
		err = a.init(ctx, cfg)
	})
	return err
}

func (a *App) init(ctx context.Context, cfg *appConfig) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.logLevel))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.logLevel, err)
	}
	logging.SetDefault("asyncapi", version, cfg.logFormat, level)

	a.metricsOnce.Do(func() {
		hook.RegisterMetrics(prometheus.DefaultRegisterer)
		plugin.RegisterMetrics(prometheus.DefaultRegisterer)
		command.RegisterMetrics(prometheus.DefaultRegisterer)
	})

	configPath := cfg.configFile
	if configPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			configPath, _ = config.Discover(cwd)
		}
	}
	doc, err := config.Load(configPath, cfg.flags)
	if err != nil {
		return err
	}
	a.Config = doc

	history, err := config.LoadHistory(config.HistoryPath())
	if err != nil {
		slog.Debug("starting with empty command history", "error", err)
		history = &config.History{}
	}
	a.History = history

	a.Hooks = hook.NewManager()
	lua.LoadHookScripts(ctx, a.Hooks, xdg.HooksDir())

	a.Registry = plugin.NewRegistry()
	a.luaHost = lua.NewHost()
	a.binHost = goplugin.NewHost()

	loader := plugin.NewLoader(a.Registry, a.Hooks, a.Config,
		plugin.WithBuiltinDir(builtinPluginDir()),
		plugin.WithSharedDir(xdg.PluginsDir()),
		plugin.WithHost(plugin.TypeLua, a.luaHost),
		plugin.WithHost(plugin.TypeBinary, a.binHost))
	loader.LoadPlugins(ctx)

	a.Hooks.ExecuteWithContext(ctx, hook.Init)
	return nil
}

// builtinPluginDir is the plugins directory shipped next to the binary.
func builtinPluginDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "plugins")
}

// Close shuts down the plugin hosts.
func (a *App) Close(ctx context.Context) {
	if a.luaHost != nil {
		if err := a.luaHost.Close(ctx); err != nil {
			slog.Warn("failed to close lua plugin host", "error", err)
		}
	}
	if a.binHost != nil {
		if err := a.binHost.Close(ctx); err != nil {
			slog.Warn("failed to close binary plugin host", "error", err)
		}
	}
}
