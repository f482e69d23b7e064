// Package config loads the dcmdb configuration file and merges command line
// overrides into it.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ArchiveConfig configures access to the remote archive
type ArchiveConfig struct {
	// ListCommand is the listing tool and its leading arguments; the
	// directory to list is appended
	ListCommand []string `yaml:"list_command"`

	// Timeout bounds one listing call
	Timeout time.Duration `yaml:"timeout"`

	// Prefixes mark path templates located in the archive
	Prefixes []string `yaml:"prefixes"`
}

// StoreConfig configures the SQLite export
type StoreConfig struct {
	// SQLitePath is the default target of "dcmdb export"
	SQLitePath string `yaml:"sqlite_path"`
}

// Config represents dcmdb configuration options
type Config struct {
	// CasesPath is the directory holding one sub-directory per case
	CasesPath string `yaml:"cases_path"`

	// Host selects the path templates to use; detected from the hostname
	// through Hosts when empty
	Host string `yaml:"host"`

	// Hosts maps host names to regular expressions matched against the
	// machine hostname
	Hosts map[string]string `yaml:"hosts"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written; empty disables
	// file logging
	LogDir string `yaml:"log_dir"`

	// PrintLevel is the default detail level of "dcmdb show"
	PrintLevel int `yaml:"print_level"`

	Archive ArchiveConfig `yaml:"archive"`
	Store   StoreConfig   `yaml:"store"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		CasesPath:  "cases",
		Hosts:      map[string]string{"atos": `^a(a|b|c|d)`},
		LogLevel:   "info",
		LogDir:     DefaultHome + "/logs",
		PrintLevel: 1,
		Archive: ArchiveConfig{
			ListCommand: []string{"els"},
			Timeout:     2 * time.Minute,
			Prefixes:    []string{"ec:", "ectmp:"},
		},
		Store: StoreConfig{
			SQLitePath: DefaultHome + "/catalog.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// list_command may be a single string; timeout is a duration string
	type yamlConfig struct {
		CasesPath  string            `yaml:"cases_path"`
		Host       string            `yaml:"host"`
		Hosts      map[string]string `yaml:"hosts"`
		LogLevel   string            `yaml:"log_level"`
		LogDir     *string           `yaml:"log_dir"`
		PrintLevel *int              `yaml:"print_level"`
		Archive    struct {
			ListCommand yaml.Node `yaml:"list_command"`
			Timeout     string    `yaml:"timeout"`
			Prefixes    []string  `yaml:"prefixes"`
		} `yaml:"archive"`
		Store StoreConfig `yaml:"store"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.CasesPath != "" {
		cfg.CasesPath = yamlCfg.CasesPath
	}
	if yamlCfg.Host != "" {
		cfg.Host = yamlCfg.Host
	}
	if yamlCfg.Hosts != nil {
		cfg.Hosts = yamlCfg.Hosts
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	// An explicit empty log_dir turns file logging off
	if yamlCfg.LogDir != nil {
		cfg.LogDir = *yamlCfg.LogDir
	}
	if yamlCfg.PrintLevel != nil {
		cfg.PrintLevel = *yamlCfg.PrintLevel
	}

	command, err := decodeCommand(&yamlCfg.Archive.ListCommand)
	if err != nil {
		return nil, fmt.Errorf("invalid archive.list_command: %w", err)
	}
	if len(command) > 0 {
		cfg.Archive.ListCommand = command
	}
	if yamlCfg.Archive.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Archive.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid archive.timeout format %q: %w", yamlCfg.Archive.Timeout, err)
		}
		cfg.Archive.Timeout = timeout
	}
	if yamlCfg.Archive.Prefixes != nil {
		cfg.Archive.Prefixes = yamlCfg.Archive.Prefixes
	}
	if yamlCfg.Store.SQLitePath != "" {
		cfg.Store.SQLitePath = yamlCfg.Store.SQLitePath
	}

	return cfg, nil
}

// decodeCommand accepts either "els -l" or ["els", "-l"].
func decodeCommand(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		return strings.Fields(s), nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("expected a string or a list of strings")
	}
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(casesPath *string, host *string, logLevel *string, printLevel *int) {
	if casesPath != nil {
		c.CasesPath = *casesPath
	}
	if host != nil {
		c.Host = *host
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if printLevel != nil {
		c.PrintLevel = *printLevel
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.CasesPath == "" {
		return fmt.Errorf("cases_path cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.PrintLevel < -1 || c.PrintLevel > 3 {
		return fmt.Errorf("print_level must be between -1 and 3, got %d", c.PrintLevel)
	}

	for name, expr := range c.Hosts {
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("invalid hosts.%s pattern %q: %w", name, expr, err)
		}
	}

	if len(c.Archive.ListCommand) == 0 || c.Archive.ListCommand[0] == "" {
		return fmt.Errorf("archive.list_command cannot be empty")
	}
	if c.Archive.Timeout < 0 {
		return fmt.Errorf("archive.timeout must be >= 0, got %v", c.Archive.Timeout)
	}

	return nil
}
