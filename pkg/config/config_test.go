package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Build.Entrypoint != "main.aaa" {
		t.Errorf("Expected default entrypoint 'main.aaa', got %q", cfg.Build.Entrypoint)
	}
	if !cfg.Diagnostics.Color {
		t.Error("Expected color output to be enabled by default")
	}
	if cfg.Diagnostics.ContextLines != 0 {
		t.Errorf("Expected default context_lines 0, got %d", cfg.Diagnostics.ContextLines)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
	}{
		{name: "valid default config", config: DefaultConfig(), wantError: false},
		{
			name:      "negative context lines",
			config:    &Config{Diagnostics: DiagnosticsConfig{ContextLines: -1}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func withTempWorkdir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	return tmpDir
}

func TestLoadConfigNoFile(t *testing.T) {
	withTempWorkdir(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.Entrypoint != "main.aaa" {
		t.Errorf("Expected default entrypoint, got %q", cfg.Build.Entrypoint)
	}
}

func TestLoadConfigProjectFile(t *testing.T) {
	tmpDir := withTempWorkdir(t)

	projectConfig := `[build]
entrypoint = "src/app.aaa"
stdlib = "vendor/stdlib/builtins.aaa"

[diagnostics]
color = false
context_lines = 2
`
	configPath := filepath.Join(tmpDir, "aaac.toml")
	if err := os.WriteFile(configPath, []byte(projectConfig), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.Entrypoint != "src/app.aaa" {
		t.Errorf("Expected entrypoint 'src/app.aaa', got %q", cfg.Build.Entrypoint)
	}
	if cfg.Diagnostics.Color {
		t.Error("Expected color disabled from project config")
	}
	if cfg.Diagnostics.ContextLines != 2 {
		t.Errorf("Expected context_lines 2, got %d", cfg.Diagnostics.ContextLines)
	}
}

func TestLoadConfigCLIOverride(t *testing.T) {
	tmpDir := withTempWorkdir(t)

	projectConfig := `[build]
entrypoint = "src/app.aaa"
`
	configPath := filepath.Join(tmpDir, "aaac.toml")
	if err := os.WriteFile(configPath, []byte(projectConfig), 0644); err != nil {
		t.Fatal(err)
	}

	overrides := &Config{Build: BuildConfig{Entrypoint: "cli.aaa"}}
	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.Entrypoint != "cli.aaa" {
		t.Errorf("Expected CLI override to win, got %q", cfg.Build.Entrypoint)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	tmpDir := withTempWorkdir(t)

	invalidConfig := `[build
entrypoint = "main.aaa"
`
	configPath := filepath.Join(tmpDir, "aaac.toml")
	if err := os.WriteFile(configPath, []byte(invalidConfig), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(nil); err == nil {
		t.Error("Expected error for invalid TOML, got nil")
	}
}

func TestResolveStdlibPathPrecedence(t *testing.T) {
	oldEnv, hadEnv := os.LookupEnv("AAA_STDLIB")
	defer func() {
		if hadEnv {
			os.Setenv("AAA_STDLIB", oldEnv)
		} else {
			os.Unsetenv("AAA_STDLIB")
		}
	}()

	cfg := DefaultConfig()

	os.Unsetenv("AAA_STDLIB")
	if got := cfg.ResolveStdlibPath("/proj"); got != filepath.Join("/proj", "stdlib", "builtins.aaa") {
		t.Errorf("Expected default stdlib path, got %q", got)
	}

	os.Setenv("AAA_STDLIB", "/env/builtins.aaa")
	if got := cfg.ResolveStdlibPath("/proj"); got != "/env/builtins.aaa" {
		t.Errorf("Expected env override, got %q", got)
	}

	cfg.Build.Stdlib = "/explicit/builtins.aaa"
	if got := cfg.ResolveStdlibPath("/proj"); got != "/explicit/builtins.aaa" {
		t.Errorf("Expected explicit config to win, got %q", got)
	}
}
