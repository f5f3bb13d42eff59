package commands

import (
	"fmt"
	"os"

	"github.com/airchains-network/wallet-viewer/config"
	"github.com/spf13/cobra"
)

// InitCmd represents the init command
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the walletview configuration file",
	Long: `Write ~/.walletview/config.toml (or --config) with the node URL and account count.
Other settings get their defaults and can be edited in the file afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd)
	},
}

func init() {
	InitCmd.Flags().String("rpc-url", "http://127.0.0.1:8545", "Ethereum JSON-RPC URL")
	InitCmd.Flags().Uint("count", 9, "Number of accounts to derive (seeds 1..count)")
	InitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func initCommand(cmd *cobra.Command) error {
	rpcURL, _ := cmd.Flags().GetString("rpc-url")
	count, _ := cmd.Flags().GetUint("count")
	force, _ := cmd.Flags().GetBool("force")

	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s, use --force to overwrite", path)
	}

	cfg := config.DefaultConfig()
	cfg.General.RPCURL = rpcURL
	cfg.Wallet.Count = count
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Configuration Summary ===")
	fmt.Fprintf(out, "RPC URL: %s\n", cfg.General.RPCURL)
	fmt.Fprintf(out, "Accounts: %d\n", cfg.Wallet.Count)
	fmt.Fprintf(out, "Config File: %s\n", path)
	fmt.Fprintln(out, "\nStart the viewer with: walletview start")
	return nil
}
