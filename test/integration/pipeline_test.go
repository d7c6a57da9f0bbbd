// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/asyncapi/cli/internal/config"
	"github.com/asyncapi/cli/internal/hook"
	"github.com/asyncapi/cli/internal/plugin"
	"github.com/asyncapi/cli/internal/plugin/lua"
)

var _ = Describe("Plugin pipeline", func() {
	var (
		ctx      context.Context
		hooks    *hook.Manager
		registry *plugin.Registry
		luaHost  *lua.Host
	)

	BeforeEach(func() {
		ctx = context.Background()
		hooks = hook.NewManager()
		registry = plugin.NewRegistry()
		luaHost = lua.NewHost()
		DeferCleanup(func() {
			Expect(luaHost.Close(ctx)).To(Succeed())
		})
	})

	writePlugin := func(root, dirName, name, script string) {
		dir := filepath.Join(root, dirName)
		Expect(os.MkdirAll(dir, 0o750)).To(Succeed())
		manifest := "name: " + name + "\nversion: 1.0.0\ntype: lua\nentry: main.lua\n"
		Expect(os.WriteFile(filepath.Join(dir, "plugin.yaml"), []byte(manifest), 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "main.lua"), []byte(script), 0o600)).To(Succeed())
	}

	It("loads the shipped changelog sample and fires its hook", func() {
		builtin := GinkgoT().TempDir()

		src, err := os.ReadFile("../../plugins/changelog/main.lua")
		Expect(err).NotTo(HaveOccurred())
		writePlugin(builtin, "changelog", "changelog", string(src))

		doc, err := config.Load("", nil)
		Expect(err).NotTo(HaveOccurred())

		loader := plugin.NewLoader(registry, hooks, doc,
			plugin.WithBuiltinDir(builtin),
			plugin.WithHost(plugin.TypeLua, luaHost))
		loader.LoadPlugins(ctx)

		Expect(registry.Len()).To(Equal(1))

		shared := hooks.SharedContext()
		shared.Set("file", "asyncapi.yaml")
		shared.Set("validation_error", nil)

		results := hooks.ExecuteWithContext(ctx, hook.ValidateAfter)
		Expect(results).To(HaveLen(1))
		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(results[0].Value).To(Equal("asyncapi.yaml"))

		last, ok := shared.Get("changelog:last")
		Expect(ok).To(BeTrue())
		Expect(last).To(Equal("asyncapi.yaml"))
	})

	It("keeps loading when one candidate is broken and respects precedence", func() {
		builtin := GinkgoT().TempDir()
		shared := GinkgoT().TempDir()
		cfgDir := GinkgoT().TempDir()

		writePlugin(builtin, "healthy", "healthy", `function register(api) end`)
		writePlugin(builtin, "broken", "broken", `this is not lua`)
		writePlugin(shared, "asyncapi-cli-plugin-linter", "linter", `function register(api) end`)
		writePlugin(cfgDir, "local-plugin", "local", `function register(api) end`)

		cfgPath := filepath.Join(cfgDir, config.FileName)
		Expect(os.WriteFile(cfgPath, []byte(`
plugins:
  linter:
    enabled: true
  ./local-plugin:
    enabled: true
`), 0o600)).To(Succeed())

		doc, err := config.Load(cfgPath, nil)
		Expect(err).NotTo(HaveOccurred())

		loader := plugin.NewLoader(registry, hooks, doc,
			plugin.WithBuiltinDir(builtin),
			plugin.WithSharedDir(shared),
			plugin.WithHost(plugin.TypeLua, luaHost))
		loader.LoadPlugins(ctx)

		names := []string{}
		for _, p := range registry.AllPlugins() {
			names = append(names, p.Name)
		}
		Expect(names).To(ConsistOf("healthy", "linter", "local"))

		linter, ok := registry.GetPlugin("linter")
		Expect(ok).To(BeTrue())
		Expect(linter.Source).To(Equal(plugin.SourceShared))
	})

	It("auto-registers hook scripts from the hooks directory", func() {
		hooksDir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(hooksDir, "command_before.lua"), []byte(`
			function handle(ctx)
				ctx.set("observed", ctx.get("command"))
				return true
			end
		`), 0o600)).To(Succeed())

		lua.LoadHookScripts(ctx, hooks, hooksDir)

		shared := hooks.SharedContext()
		shared.Set("command", "validate")
		results := hooks.ExecuteWithContext(ctx, hook.CommandBefore)
		Expect(results).To(HaveLen(1))

		observed, ok := shared.Get("observed")
		Expect(ok).To(BeTrue())
		Expect(observed).To(Equal("validate"))
	})
})
