// Package config handles the configuration management for the password manager.
// It provides functionality to load, save, and manage application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the password manager configuration
type Config struct {
	DataDir        string         `yaml:"data_dir"`
	MasterFile     string         `yaml:"master_file"`
	VaultFile      string         `yaml:"vault_file"`
	JournalFile    string         `yaml:"journal_file"`
	SaltLength     int            `yaml:"salt_length"`
	PasswordLength int            `yaml:"password_length"`
	ClipboardTTL   time.Duration  `yaml:"clipboard_ttl"`
	HistoryLimit   int            `yaml:"history_limit"`
	Backup         BackupConfig   `yaml:"backup"`
	Log            LogConfig      `yaml:"log"`
	Security       SecurityConfig `yaml:"security"`
}

// BackupConfig controls encrypted exports
type BackupConfig struct {
	// ScryptWorkFactor is the log2 scrypt cost for export passphrases; 0 uses the default
	ScryptWorkFactor int `yaml:"scrypt_work_factor"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SecurityConfig represents security-related configuration
type SecurityConfig struct {
	RequireStrongMaster bool `yaml:"require_strong_master"`
	ConfirmDestructive  bool `yaml:"confirm_destructive"`
}

// DefaultConfigPath returns ~/.config/passman/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "passman", "config.yaml"), nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:        filepath.Join(home, ".local", "share", "passman"),
		MasterFile:     "master.txt",
		VaultFile:      "passwords.txt",
		JournalFile:    "journal.db",
		SaltLength:     16,
		PasswordLength: 16,
		ClipboardTTL:   30 * time.Second,
		HistoryLimit:   10,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Security: SecurityConfig{
			RequireStrongMaster: true,
			ConfirmDestructive:  true,
		},
	}
}

// Validate checks the values a config file may have broken
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.SaltLength <= 0 {
		return fmt.Errorf("salt_length must be positive, got %d", c.SaltLength)
	}
	if c.PasswordLength <= 0 {
		return fmt.Errorf("password_length must be positive, got %d", c.PasswordLength)
	}
	if c.ClipboardTTL < 0 {
		return fmt.Errorf("clipboard_ttl cannot be negative")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit cannot be negative")
	}
	if wf := c.Backup.ScryptWorkFactor; wf < 0 || wf > 30 {
		return fmt.Errorf("backup.scrypt_work_factor must be between 0 and 30, got %d", wf)
	}
	return nil
}

// JournalPath returns the absolute journal path
func (c *Config) JournalPath() string {
	return filepath.Join(c.DataDir, c.JournalFile)
}

// LoadConfig loads configuration from file or returns default.
// A missing file is created with the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(cfg, configPath); err != nil {
			return cfg, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, configPath string) error {
	cleanPath := filepath.Clean(configPath)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
