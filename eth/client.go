package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps both rpc.Client and ethclient.Client for Ethereum interactions.
// It is safe for concurrent use.
type Client struct {
	Rpc *rpc.Client
	Eth *ethclient.Client
	URL string
}

// NodeInfo describes the node a Client talks to
type NodeInfo struct {
	ChainID       *big.Int
	BlockNumber   uint64
	ClientVersion string
}

// NewClient initializes a new Ethereum client with both RPC and ethclient
// sharing one connection.
func NewClient(url string) (*Client, error) {
	rpcClient, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	return &Client{
		Rpc: rpcClient,
		Eth: ethclient.NewClient(rpcClient),
		URL: url,
	}, nil
}

// BalanceAt returns the wei balance of account. A nil blockNumber means latest.
func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return c.Eth.BalanceAt(ctx, account, blockNumber)
}

// NodeInfo queries chain ID, head block and client version.
func (c *Client) NodeInfo(ctx context.Context) (NodeInfo, error) {
	var info NodeInfo

	chainID, err := c.Eth.ChainID(ctx)
	if err != nil {
		return info, fmt.Errorf("failed to get chain id: %w", err)
	}
	info.ChainID = chainID

	head, err := c.Eth.BlockNumber(ctx)
	if err != nil {
		return info, fmt.Errorf("failed to get block number: %w", err)
	}
	info.BlockNumber = head

	if err := c.Rpc.CallContext(ctx, &info.ClientVersion, "web3_clientVersion"); err != nil {
		return info, fmt.Errorf("failed to get client version: %w", err)
	}
	return info, nil
}

// Close shuts down the underlying connection
func (c *Client) Close() {
	c.Rpc.Close()
}
