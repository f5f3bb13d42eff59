package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// HomeDirName is the directory under the user's home holding config and logs
const HomeDirName = ".walletview"

// Config holds the application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Wallet  WalletConfig  `toml:"wallet"`
	Refresh RefreshConfig `toml:"refresh"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
}

// GeneralConfig holds the node endpoint
type GeneralConfig struct {
	RPCURL string `toml:"rpc_url"`
}

// WalletConfig controls the derived account set
type WalletConfig struct {
	Count uint `toml:"count"` // seeds 1..Count
}

// RefreshConfig tunes balance refreshes
type RefreshConfig struct {
	QueryTimeout string `toml:"query_timeout"` // Go duration, e.g. "10s"
	Concurrency  int    `toml:"concurrency"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty: <home>/.walletview/walletview.log
}

// ServerConfig holds headless mode settings
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{RPCURL: "http://127.0.0.1:8545"},
		Wallet:  WalletConfig{Count: 9},
		Refresh: RefreshConfig{QueryTimeout: "10s", Concurrency: 4},
		Log:     LogConfig{Level: "info"},
		Server:  ServerConfig{Listen: ":8090"},
	}
}

// applyDefaults fills the settings the file does not mention. Keys present in
// the file are kept as written, so an explicit zero still reaches Validate.
func (c *Config) applyDefaults(tree *toml.Tree) {
	def := DefaultConfig()
	if !tree.Has("general.rpc_url") {
		c.General.RPCURL = def.General.RPCURL
	}
	if !tree.Has("wallet.count") {
		c.Wallet.Count = def.Wallet.Count
	}
	if !tree.Has("refresh.query_timeout") {
		c.Refresh.QueryTimeout = def.Refresh.QueryTimeout
	}
	if !tree.Has("refresh.concurrency") {
		c.Refresh.Concurrency = def.Refresh.Concurrency
	}
	if !tree.Has("log.level") {
		c.Log.Level = def.Log.Level
	}
	if !tree.Has("server.listen") {
		c.Server.Listen = def.Server.Listen
	}
}

// DefaultPath returns <home>/.walletview/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, HomeDirName, "config.toml"), nil
}

// LoadConfig reads from path, fills unset fields with defaults and validates
// the result
func LoadConfig(path string) (Config, error) {
	var cfg Config
	file, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	tree, err := toml.LoadBytes(file)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := tree.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config file: %w", err)
	}
	cfg.applyDefaults(tree)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when it does not exist
func LoadOrDefault(path string) (Config, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), false, nil
	}
	cfg, err := LoadConfig(path)
	return cfg, err == nil, err
}

// Save writes the config as TOML, creating parent directories
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that every field is usable
func (c Config) Validate() error {
	if c.General.RPCURL == "" {
		return fmt.Errorf("general.rpc_url is required")
	}
	if c.Wallet.Count == 0 {
		return fmt.Errorf("wallet.count must be at least 1")
	}
	if _, err := c.QueryTimeout(); err != nil {
		return err
	}
	if c.Refresh.Concurrency < 1 {
		return fmt.Errorf("refresh.concurrency must be at least 1, got %d", c.Refresh.Concurrency)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return nil
}

// QueryTimeout parses refresh.query_timeout
func (c Config) QueryTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Refresh.QueryTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid refresh.query_timeout %q: %w", c.Refresh.QueryTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("refresh.query_timeout must be positive, got %s", d)
	}
	return d, nil
}

// LogFile returns the configured log file or the default one under home
func (c Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, HomeDirName, "walletview.log"), nil
}
