package commands

import (
	"fmt"

	"github.com/airchains-network/wallet-viewer/eth"
	"github.com/airchains-network/wallet-viewer/tui"
	"github.com/airchains-network/wallet-viewer/wallet"
	"github.com/spf13/cobra"
)

// StartCmd represents the start command
var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the terminal viewer",
	Long: `Start the terminal viewer with the configuration from ~/.walletview/config.toml.
Press a to refresh balances and q to quit. Logs go to the configured log file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startCommand(cmd)
	},
}

func init() {
	StartCmd.Flags().String("rpc-url", "", "Override general.rpc_url")
}

func startCommand(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := refreshOptions(cfg)
	if err != nil {
		return err
	}

	// stdout belongs to the UI
	logFile, err := openLogFile(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log, err := newLogger(cfg.Log.Level, logFile)
	if err != nil {
		return err
	}

	client, err := eth.NewClient(cfg.General.RPCURL)
	if err != nil {
		log.Errorf("Failed to initialize Ethereum client: %v", err)
		return err
	}
	defer client.Close()
	log.Infof("Connected to %s", cfg.General.RPCURL)

	accounts, err := wallet.Build(cfg.Wallet.Count)
	if err != nil {
		log.Errorf("Failed to derive accounts: %v", err)
		return err
	}
	log.Infof("Derived %d accounts", len(accounts))

	if err := tui.Run(tui.New(client, accounts, opts, log)); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
