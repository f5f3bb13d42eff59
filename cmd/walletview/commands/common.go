package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/airchains-network/wallet-viewer/balance"
	"github.com/airchains-network/wallet-viewer/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// configPath returns --config or the default location
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

// loadConfig loads the config file, using defaults when it does not exist.
// A --rpc-url flag on cmd overrides the file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return config.Config{}, err
	}
	cfg, _, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if flag := cmd.Flags().Lookup("rpc-url"); flag != nil && flag.Changed {
		cfg.General.RPCURL = flag.Value.String()
	}
	return cfg, nil
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(lvl)
	return log, nil
}

// openLogFile opens the configured log file for appending
func openLogFile(cfg config.Config) (*os.File, error) {
	path, err := cfg.LogFile()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func refreshOptions(cfg config.Config) (balance.Options, error) {
	timeout, err := cfg.QueryTimeout()
	if err != nil {
		return balance.Options{}, err
	}
	return balance.Options{QueryTimeout: timeout, Concurrency: cfg.Refresh.Concurrency}, nil
}
