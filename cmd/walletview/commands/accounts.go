package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/airchains-network/wallet-viewer/wallet"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

// AccountsCmd prints the derived account set without contacting a node
var AccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Print the derived accounts",
	Long: `Print the accounts derived from seeds 1..count. No node is contacted.
With --show-keys the private keys are printed as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return accountsCommand(cmd)
	},
}

func init() {
	AccountsCmd.Flags().Bool("show-keys", false, "Also print private keys")
	AccountsCmd.Flags().Uint("count", 0, "Override wallet.count")
}

func accountsCommand(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flag := cmd.Flags().Lookup("count"); flag.Changed {
		cfg.Wallet.Count, _ = cmd.Flags().GetUint("count")
	}
	showKeys, _ := cmd.Flags().GetBool("show-keys")

	var opts []wallet.Option
	if showKeys {
		opts = append(opts, wallet.WithPrivateKeys())
	}
	accounts, err := wallet.Build(cfg.Wallet.Count, opts...)
	if err != nil {
		return fmt.Errorf("failed to derive accounts: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, acc := range accounts {
		if acc.PrivateKey == nil {
			fmt.Fprintf(out, "%d: %s\n", acc.Index, acc.HexAddress())
			continue
		}
		fmt.Fprintf(out, "%d: %s KEY: 0x%s\n", acc.Index, acc.HexAddress(), hex.EncodeToString(crypto.FromECDSA(acc.PrivateKey)))
	}
	if showKeys {
		fmt.Fprintln(out, "\nIMPORTANT: these keys are derived from small public seeds. Never send real funds to them!")
	}
	return nil
}
