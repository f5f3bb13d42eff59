package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/airchains-network/wallet-viewer/eth"
	"github.com/airchains-network/wallet-viewer/server"
	"github.com/airchains-network/wallet-viewer/wallet"
	"github.com/spf13/cobra"
)

// ServeCmd runs the viewer headless behind an HTTP and websocket API
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve balances over HTTP and websocket",
	Long: `Serve the derived accounts over HTTP without a terminal UI.
GET /accounts returns the current snapshot, POST /refresh refreshes balances and
GET /ws streams every new snapshot to websocket subscribers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand(cmd)
	},
}

func init() {
	ServeCmd.Flags().String("rpc-url", "", "Override general.rpc_url")
	ServeCmd.Flags().String("listen", "", "Override server.listen")
	ServeCmd.Flags().Duration("interval", 0, "Refresh balances periodically (0 disables)")
}

func serveCommand(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	interval, _ := cmd.Flags().GetDuration("interval")

	opts, err := refreshOptions(cfg)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log.Level, os.Stderr)
	if err != nil {
		return err
	}

	client, err := eth.NewClient(cfg.General.RPCURL)
	if err != nil {
		log.Errorf("Failed to initialize Ethereum client: %v", err)
		return err
	}
	defer client.Close()

	accounts, err := wallet.Build(cfg.Wallet.Count)
	if err != nil {
		log.Errorf("Failed to derive accounts: %v", err)
		return err
	}
	log.Infof("Derived %d accounts, node %s", len(accounts), cfg.General.RPCURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(client, accounts, opts, log).Run(ctx, cfg.Server.Listen, interval)
}
