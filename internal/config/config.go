package config

import (
	"path/filepath"

	"github.com/mvp-joe/component-atlas/internal/component"
)

// Config represents the complete atlas configuration.
// It can be loaded from .atlas/config.yml with environment variable overrides.
type Config struct {
	Manifest   string                   `yaml:"manifest" mapstructure:"manifest"` // component export manifest, relative to the project root
	Store      string                   `yaml:"store" mapstructure:"store"`       // metadata JSON file, relative to the project root
	Paths      PathsConfig              `yaml:"paths" mapstructure:"paths"`
	Categories []component.CategoryRule `yaml:"categories" mapstructure:"categories"` // prepended to the built-in classifier rules
	Server     ServerConfig             `yaml:"server" mapstructure:"server"`
	Log        LogConfig                `yaml:"log" mapstructure:"log"`
}

// PathsConfig defines where component sources and docs live.
type PathsConfig struct {
	Components []string `yaml:"components" mapstructure:"components"` // glob patterns for component source files
	Docs       []string `yaml:"docs" mapstructure:"docs"`             // glob patterns for markdown docs with frontmatter
	Ignore     []string `yaml:"ignore" mapstructure:"ignore"`         // glob patterns to ignore
}

// ServerConfig configures the MCP server and bootstrapper.
type ServerConfig struct {
	Name             string `yaml:"name" mapstructure:"name"`
	ForceSyncOnStart bool   `yaml:"force_sync_on_start" mapstructure:"force_sync_on_start"`
	SearchCacheSize  int    `yaml:"search_cache_size" mapstructure:"search_cache_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Manifest: "src/index.ts",
		Store:    filepath.Join(".atlas", "components.json"),
		Paths: PathsConfig{
			Components: []string{
				"src/**/*.tsx",
				"src/**/*.ts",
				"src/**/*.jsx",
				"src/**/*.js",
			},
			Docs: []string{
				"docs/**/*.md",
				"docs/**/*.mdx",
			},
			Ignore: []string{
				"node_modules/**",
				"dist/**",
				"build/**",
				"**/*.test.tsx",
				"**/*.stories.tsx",
			},
		},
		Server: ServerConfig{
			Name:             "component-atlas",
			ForceSyncOnStart: false,
			SearchCacheSize:  1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ManifestPath resolves the manifest path against a project root.
func (c *Config) ManifestPath(rootDir string) string {
	return resolve(rootDir, c.Manifest)
}

// StorePath resolves the store path against a project root.
func (c *Config) StorePath(rootDir string) string {
	return resolve(rootDir, c.Store)
}

func resolve(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
