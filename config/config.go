// ABOUTME: Configuration management for history, backup paths, logging and key bindings
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"eis-history/history"
)

// Actions lists every key-bindable editor action
var Actions = []string{
	"up", "down", "delete", "duplicate", "move-up", "move-down",
	"mask", "focus", "undo", "redo", "save", "quit",
}

// Config holds all user settings
type Config struct {
	History  HistoryConfig       `toml:"history"`
	Paths    PathsConfig         `toml:"paths"`
	Recovery RecoveryConfig      `toml:"recovery"`
	Logging  LoggingConfig       `toml:"logging"`
	Keys     map[string][]string `toml:"keys" validate:"dive,keys,oneof=up down delete duplicate move-up move-down mask focus undo redo save quit,endkeys,min=1,dive,required"`
}

// HistoryConfig controls snapshot retention and auto-backup cadence
type HistoryConfig struct {
	AutoBackupInterval int  `toml:"auto_backup_interval" validate:"gte=0"` // 0 disables auto-backup
	MaxSnapshots       int  `toml:"max_snapshots" validate:"gte=0"`        // 0 keeps every snapshot
	DeferredBackups    bool `toml:"deferred_backups"`
}

// PathsConfig holds the directories for backup and recovery files
type PathsConfig struct {
	BackupDir   string `toml:"backup_dir" validate:"required"`
	RecoveryDir string `toml:"recovery_dir" validate:"required"`
}

// RecoveryConfig toggles session recovery files
type RecoveryConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig configures the zerolog logger
type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
	File   string `toml:"file"` // empty logs to stderr
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/eis-history/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./eis-history.toml"); err == nil {
		return "./eis-history.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./eis-history.toml"
	}

	return filepath.Join(home, ".config", "eis-history", "config.toml")
}

// LoadConfig loads configuration from a TOML file
// A missing file returns the defaults; read, parse and validation errors return the defaults and the error.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Paths.BackupDir = expandHome(cfg.Paths.BackupDir)
	cfg.Paths.RecoveryDir = expandHome(cfg.Paths.RecoveryDir)

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	data := dataDir()

	return Config{
		History: HistoryConfig{
			AutoBackupInterval: 10,
			MaxSnapshots:       0,
			DeferredBackups:    false,
		},
		Paths: PathsConfig{
			BackupDir:   filepath.Join(data, "backups"),
			RecoveryDir: filepath.Join(data, "recovery"),
		},
		Recovery: RecoveryConfig{Enabled: true},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Keys: DefaultKeys(),
	}
}

// DefaultKeys returns the default key bindings per action
func DefaultKeys() map[string][]string {
	return map[string][]string{
		"up":        {"up", "k"},
		"down":      {"down", "j"},
		"delete":    {"x", "delete"},
		"duplicate": {"d"},
		"move-up":   {"K", "shift+up"},
		"move-down": {"J", "shift+down"},
		"mask":      {"m"},
		"focus":     {"tab"},
		"undo":      {"u", "ctrl+z"},
		"redo":      {"r", "ctrl+y"},
		"save":      {"s", "ctrl+s"},
		"quit":      {"q", "ctrl+c"},
	}
}

// HistoryOptions converts the config into history manager options
func (c Config) HistoryOptions() history.Options {
	return history.Options{
		AutoBackupInterval: c.History.AutoBackupInterval,
		MaxSnapshots:       c.History.MaxSnapshots,
		Recovery:           c.Recovery.Enabled,
		Deferred:           c.History.DeferredBackups,
	}
}

// Bindings returns the keys for an action, falling back to the defaults
func (c Config) Bindings(action string) []string {
	if keys, ok := c.Keys[action]; ok && len(keys) > 0 {
		return keys
	}

	return DefaultKeys()[action]
}

// Duplicates returns keys bound to more than one action, mapped to those actions
func (c Config) Duplicates() map[string][]string {
	owners := make(map[string][]string)

	for _, action := range Actions {
		for _, k := range c.Bindings(action) {
			owners[k] = append(owners[k], action)
		}
	}

	dups := make(map[string][]string)

	for k, actions := range owners {
		if len(actions) > 1 {
			slices.Sort(actions)
			dups[k] = actions
		}
	}

	return dups
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".eis-history")
	}

	return filepath.Join(home, ".local", "share", "eis-history")
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, rest)
}
