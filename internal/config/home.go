package config

import (
	"os"
	"path/filepath"
)

// DefaultHome is the per-project directory holding configuration, logs and
// the default SQLite export.
const DefaultHome = ".dcmdb"

// Environment variables consulted when no flag is given
const (
	EnvConfig = "DCMDB_CONFIG"
	EnvHome   = "DCMDB_HOME"
)

// Home returns the dcmdb home directory: $DCMDB_HOME when set, otherwise
// DefaultHome relative to the working directory.
func Home() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	return DefaultHome
}

// ConfigPath resolves the configuration file location. Priority order:
//  1. the --config flag value
//  2. the DCMDB_CONFIG environment variable
//  3. config.yaml in Home()
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	return filepath.Join(Home(), "config.yaml")
}

// Load resolves the configuration path with ConfigPath and loads it. Paths
// left at their defaults follow $DCMDB_HOME.
func Load(flagValue string) (*Config, error) {
	cfg, err := LoadConfig(ConfigPath(flagValue))
	if err != nil {
		return nil, err
	}
	if home := Home(); home != DefaultHome {
		def := DefaultConfig()
		if cfg.LogDir == def.LogDir {
			cfg.LogDir = filepath.Join(home, "logs")
		}
		if cfg.Store.SQLitePath == def.Store.SQLitePath {
			cfg.Store.SQLitePath = filepath.Join(home, "catalog.db")
		}
	}
	return cfg, nil
}
