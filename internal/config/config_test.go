package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .atlas/config.yml, including extra category rules
// - Load() merges a partial config file with defaults
// - Environment variables override config file values
// - Load() returns error for malformed YAML
// - NewFileLoader reads an explicit file
// - Validate() rejects empty manifest/store, bad globs, unknown categories, bad log level
// - Validate() reports every problem at once
// - ManifestPath/StorePath resolve relative and absolute paths

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "src/index.ts", cfg.Manifest)
	assert.Equal(t, filepath.Join(".atlas", "components.json"), cfg.Store)
	assert.Equal(t, "component-atlas", cfg.Server.Name)
	assert.False(t, cfg.Server.ForceSyncOnStart)
	assert.Equal(t, 1000, cfg.Server.SearchCacheSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Paths.Components)
	assert.NotEmpty(t, cfg.Paths.Docs)
	assert.NotEmpty(t, cfg.Paths.Ignore)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.Manifest, cfg.Manifest)
	assert.Equal(t, expected.Store, cfg.Store)
	assert.Equal(t, expected.Paths.Components, cfg.Paths.Components)
	assert.Equal(t, expected.Server.SearchCacheSize, cfg.Server.SearchCacheSize)
}

func TestLoad_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
manifest: lib/index.tsx
store: cache/meta.json
paths:
  components:
    - "lib/**/*.tsx"
  docs: []
  ignore:
    - "node_modules/**"
categories:
  - category: Forms
    name_contains: [Picker, Dropzone]
  - category: layout
    path_globs: ["**/primitives/**"]
server:
  name: my-ui
  force_sync_on_start: true
  search_cache_size: 50
log:
  level: debug
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "lib/index.tsx", cfg.Manifest)
	assert.Equal(t, "cache/meta.json", cfg.Store)
	assert.Equal(t, []string{"lib/**/*.tsx"}, cfg.Paths.Components)
	assert.Equal(t, []string{"node_modules/**"}, cfg.Paths.Ignore)
	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, "Forms", cfg.Categories[0].Category)
	assert.Equal(t, []string{"Picker", "Dropzone"}, cfg.Categories[0].NameContains)
	assert.Equal(t, []string{"**/primitives/**"}, cfg.Categories[1].PathGlobs)
	assert.Equal(t, "my-ui", cfg.Server.Name)
	assert.True(t, cfg.Server.ForceSyncOnStart)
	assert.Equal(t, 50, cfg.Server.SearchCacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", `
manifest: src/index.tsx
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "src/index.tsx", cfg.Manifest)
	assert.Equal(t, Default().Store, cfg.Store)
	assert.Equal(t, Default().Server.Name, cfg.Server.Name)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
manifest: src/index.ts
log:
  level: warn
`)

	t.Setenv("ATLAS_MANIFEST", "packages/ui/index.ts")
	t.Setenv("ATLAS_LOG_LEVEL", "error")
	t.Setenv("ATLAS_SERVER_FORCE_SYNC_ON_START", "true")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "packages/ui/index.ts", cfg.Manifest)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.True(t, cfg.Server.ForceSyncOnStart)
}

func TestLoad_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "manifest: [unclosed\n  - nope")

	_, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
categories:
  - category: Widgets
    name_contains: [Foo]
`)

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCategory))
}

func TestNewFileLoader(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: elsewhere.json\n"), 0644))

	cfg, err := NewFileLoader(tempDir, path).Load()
	require.NoError(t, err)
	assert.Equal(t, "elsewhere.json", cfg.Store)
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Manifest = " "
	cfg.Store = ""
	cfg.Paths.Components = []string{"[bad"}
	cfg.Categories = []component.CategoryRule{{Category: "Nope"}}
	cfg.Log.Level = "verbose"
	cfg.Server.SearchCacheSize = -1

	err := Validate(cfg)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrEmptyManifest))
	assert.True(t, errors.Is(err, ErrEmptyStore))
	assert.True(t, errors.Is(err, ErrInvalidGlob))
	assert.True(t, errors.Is(err, ErrInvalidCategory))
	assert.True(t, errors.Is(err, ErrInvalidLogLevel))
	assert.True(t, errors.Is(err, ErrInvalidCacheSize))
}

func TestResolvePaths(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, filepath.Join("/proj", "src", "index.ts"), cfg.ManifestPath("/proj"))
	assert.Equal(t, filepath.Join("/proj", ".atlas", "components.json"), cfg.StorePath("/proj"))

	cfg.Store = "/var/lib/atlas/components.json"
	assert.Equal(t, "/var/lib/atlas/components.json", cfg.StorePath("/proj"))
}

func writeConfig(t *testing.T, rootDir, name, content string) {
	t.Helper()
	dir := filepath.Join(rootDir, ".atlas")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
