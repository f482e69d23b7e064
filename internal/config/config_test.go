package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CasesPath != "cases" {
		t.Errorf("CasesPath = %q, want %q", cfg.CasesPath, "cases")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.PrintLevel != 1 {
		t.Errorf("PrintLevel = %d, want 1", cfg.PrintLevel)
	}
	if cfg.Hosts["atos"] != `^a(a|b|c|d)` {
		t.Errorf("Hosts[atos] = %q", cfg.Hosts["atos"])
	}
	if !reflect.DeepEqual(cfg.Archive.ListCommand, []string{"els"}) {
		t.Errorf("Archive.ListCommand = %v, want [els]", cfg.Archive.ListCommand)
	}
	if cfg.Archive.Timeout != 2*time.Minute {
		t.Errorf("Archive.Timeout = %v, want 2m", cfg.Archive.Timeout)
	}
	if !reflect.DeepEqual(cfg.Archive.Prefixes, []string{"ec:", "ectmp:"}) {
		t.Errorf("Archive.Prefixes = %v", cfg.Archive.Prefixes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `cases_path: /perm/cases
host: atos
hosts:
  atos: "^a[a-d]"
  lumi: "^uan"
log_level: debug
log_dir: /tmp/logs
print_level: 0
archive:
  list_command: ["els", "-1"]
  timeout: 30s
  prefixes: ["ec:"]
store:
  sqlite_path: /tmp/catalog.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.CasesPath != "/perm/cases" {
		t.Errorf("CasesPath = %q", cfg.CasesPath)
	}
	if cfg.Host != "atos" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if len(cfg.Hosts) != 2 || cfg.Hosts["lumi"] != "^uan" {
		t.Errorf("Hosts = %v", cfg.Hosts)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.LogDir != "/tmp/logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.PrintLevel != 0 {
		t.Errorf("PrintLevel = %d, want explicit 0", cfg.PrintLevel)
	}
	if !reflect.DeepEqual(cfg.Archive.ListCommand, []string{"els", "-1"}) {
		t.Errorf("ListCommand = %v", cfg.Archive.ListCommand)
	}
	if cfg.Archive.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Archive.Timeout)
	}
	if !reflect.DeepEqual(cfg.Archive.Prefixes, []string{"ec:"}) {
		t.Errorf("Prefixes = %v", cfg.Archive.Prefixes)
	}
	if cfg.Store.SQLitePath != "/tmp/catalog.db" {
		t.Errorf("SQLitePath = %q", cfg.Store.SQLitePath)
	}
}

// TestLoadConfigPartial verifies unset keys keep their defaults
func TestLoadConfigPartial(t *testing.T) {
	path := writeConfig(t, "archive:\n  list_command: ssh hpc els\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg.Archive.ListCommand, []string{"ssh", "hpc", "els"}) {
		t.Errorf("ListCommand = %v", cfg.Archive.ListCommand)
	}
	def := DefaultConfig()
	if cfg.CasesPath != def.CasesPath || cfg.PrintLevel != def.PrintLevel || cfg.LogDir != def.LogDir {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if cfg.Archive.Timeout != def.Archive.Timeout {
		t.Errorf("Timeout = %v, want default", cfg.Archive.Timeout)
	}
}

func TestLoadConfigEmptyLogDirDisablesFileLogging(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log_dir: \"\"\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, want empty", cfg.LogDir)
	}
}

// TestLoadConfigMissingFile returns defaults when the file doesn't exist
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "cases_path: [unclosed\n", "failed to parse config file"},
		{"bad timeout", "archive:\n  timeout: soon\n", "invalid archive.timeout"},
		{"bad list command", "archive:\n  list_command:\n    tool: els\n", "invalid archive.list_command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty cases path", func(c *Config) { c.CasesPath = "" }, "cases_path"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"print level too high", func(c *Config) { c.PrintLevel = 4 }, "print_level"},
		{"print level too low", func(c *Config) { c.PrintLevel = -2 }, "print_level"},
		{"bad host pattern", func(c *Config) { c.Hosts = map[string]string{"x": "("} }, "hosts.x"},
		{"empty list command", func(c *Config) { c.Archive.ListCommand = nil }, "list_command"},
		{"negative timeout", func(c *Config) { c.Archive.Timeout = -time.Second }, "archive.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cases, host, level, plev := "/other", "lumi", "warn", 3

	cfg.MergeWithFlags(&cases, &host, nil, &plev)
	if cfg.CasesPath != "/other" || cfg.Host != "lumi" || cfg.PrintLevel != 3 {
		t.Errorf("flags not merged: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("nil flag should not override LogLevel, got %q", cfg.LogLevel)
	}

	cfg.MergeWithFlags(nil, nil, &level, nil)
	if cfg.LogLevel != "warn" || cfg.CasesPath != "/other" {
		t.Errorf("unexpected merge result: %+v", cfg)
	}
}
