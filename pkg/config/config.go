// Package config provides configuration management for the aaa compiler.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the complete aaac project configuration.
type Config struct {
	Build       BuildConfig       `toml:"build"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// BuildConfig controls what the driver loads and where the stdlib lives.
type BuildConfig struct {
	// Entrypoint is the default source file passed to "aaac build"/"aaac
	// check" when no file argument is given.
	Entrypoint string `toml:"entrypoint"`

	// Stdlib overrides the builtins file path. When empty, it falls back
	// to the AAA_STDLIB environment variable, then to "stdlib/builtins.aaa".
	Stdlib string `toml:"stdlib"`
}

// DiagnosticsConfig controls how diagnostics are rendered.
type DiagnosticsConfig struct {
	// Color selects lipgloss-styled terminal output. Defaults to true.
	// The aaac CLI does not read it: it always renders diagnostics with
	// RenderColor.
	Color bool `toml:"color"`

	// ContextLines is how many source lines of context to show around
	// the caret; 0 means just the offending line. spec.md §6 calls this
	// "optional per-line context". It is loaded and validated only:
	// Render and RenderColor always print just the offending line.
	ContextLines int `toml:"context_lines"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Entrypoint: "main.aaa",
		},
		Diagnostics: DiagnosticsConfig{
			Color:        true,
			ContextLines: 0,
		},
	}
}

// Load loads configuration from multiple sources with precedence:
//  1. CLI flags (highest priority) - passed as overrides
//  2. Project aaac.toml (current directory)
//  3. Built-in defaults (lowest priority)
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadConfigFile("aaac.toml", cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		if overrides.Build.Entrypoint != "" {
			cfg.Build.Entrypoint = overrides.Build.Entrypoint
		}
		if overrides.Build.Stdlib != "" {
			cfg.Build.Stdlib = overrides.Build.Stdlib
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadConfigFile loads a TOML configuration file into cfg. A missing file
// is not an error; defaults stand.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Diagnostics.ContextLines < 0 {
		return fmt.Errorf("invalid diagnostics.context_lines: %d (must be >= 0)", c.Diagnostics.ContextLines)
	}
	return nil
}

// ResolveStdlibPath implements the one authoritative read of where the
// builtins file lives, per the precedence:
//  1. An explicit override (typically a CLI flag already folded into cfg)
//  2. The AAA_STDLIB environment variable
//  3. The built-in default "stdlib/builtins.aaa" resolved relative to dir
//
// This is read exactly once, at driver construction; nothing downstream
// re-reads the environment.
func (c *Config) ResolveStdlibPath(dir string) string {
	if c.Build.Stdlib != "" {
		return c.Build.Stdlib
	}
	if env := os.Getenv("AAA_STDLIB"); env != "" {
		return env
	}
	return filepath.Join(dir, "stdlib", "builtins.aaa")
}
