package main

import (
	"os"

	"github.com/airchains-network/wallet-viewer/cmd/walletview/commands"
	"github.com/spf13/cobra"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "walletview",
		Short: "A terminal viewer for seed-derived Ethereum accounts",
		Long: `A terminal viewer that derives a fixed set of Ethereum accounts from seeds 1..N
and shows their balances, refreshed on demand from a JSON-RPC node.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.walletview/config.toml)")

	// Add commands
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.StartCmd)
	rootCmd.AddCommand(commands.AccountsCmd)
	rootCmd.AddCommand(commands.ServeCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
