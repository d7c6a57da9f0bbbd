// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asyncapi/cli/internal/config"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, content, 0o600))
}

func TestLoad_PluginsMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	writeFile(t, path, []byte(`
plugins:
  changelog:
    enabled: true
    format: markdown
  asyncapi-cli-plugin-linter:
    enabled: false
suggestions:
  exclude:
    - "debug:*"
`))

	doc, err := config.Load(path, nil)
	require.NoError(t, err)

	require.Len(t, doc.Plugins, 2)
	cl := doc.Plugins["changelog"]
	assert.True(t, cl.Enabled)
	assert.Equal(t, "markdown", cl.Options["format"])
	assert.False(t, doc.Plugins["asyncapi-cli-plugin-linter"].Enabled)
	assert.Equal(t, []string{"debug:*"}, doc.SuggestExclude)
	assert.Equal(t, dir, doc.Dir())
}

func TestLoad_PathIdentifierKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	writeFile(t, path, []byte(`
plugins:
  ./local-plugin:
    enabled: true
    level: strict
`))

	doc, err := config.Load(path, nil)
	require.NoError(t, err)

	spec, ok := doc.Plugins["./local-plugin"]
	require.True(t, ok, "path identifier must survive parsing intact")
	assert.True(t, spec.Enabled)
	assert.Equal(t, "strict", spec.Options["level"])
}

func TestLoad_FlagOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	writeFile(t, path, []byte("output: yaml\ntheme: dark\n"))

	flags := pflag.NewFlagSet("asyncapi", pflag.ContinueOnError)
	flags.String("output", "yaml", "")
	flags.String("theme", "light", "")
	require.NoError(t, flags.Set("output", "json"))

	doc, err := config.Load(path, flags)
	require.NoError(t, err)

	// A flag the user set wins over the file.
	assert.Equal(t, "json", doc.Get("output"))
	// An unchanged flag default must not clobber a file value.
	assert.Equal(t, "dark", doc.Get("theme"))
}

func TestLoad_EmptyPath(t *testing.T) {
	doc, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Plugins)
	assert.Empty(t, doc.Dir())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	writeFile(t, path, []byte("plugins: ["))

	_, err := config.Load(path, nil)
	assert.Error(t, err)
}

func TestDiscover_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, config.FileName), []byte("plugins: {}\n"))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	// Point XDG away from any real user config.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))

	path, ok := config.Discover(nested)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, config.FileName), path)
}

func TestDiscover_NotFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)

	_, ok := config.Discover(dir)
	assert.False(t, ok)
}

func TestDocument_SetSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	writeFile(t, path, []byte("suggestions:\n  exclude: []\n"))

	doc, err := config.Load(path, nil)
	require.NoError(t, err)
	require.NoError(t, doc.Set("plugins.changelog.enabled", true))
	require.NoError(t, doc.Save())

	again, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.True(t, again.Plugins["changelog"].Enabled)
}
