// Package chain provides Solana transaction building, address and amount
// handling, and the JSON-RPC client used to read balances and broadcast.
package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Cluster names accepted by the explorer.
const (
	ClusterDevnet  = "devnet"
	ClusterTestnet = "testnet"
	ClusterMainnet = "mainnet-beta"
)

// Anchor is the recent blockhash a transaction is bound to.
// A transaction is only valid while the chain has not passed LastValidBlockHeight.
type Anchor struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// AnchorSource fetches a fresh anchor from the network.
type AnchorSource interface {
	// LatestAnchor returns the most recent finalized blockhash.
	LatestAnchor(ctx context.Context) (Anchor, error)
}

// BalanceReader provides balance querying capabilities.
type BalanceReader interface {
	// GetBalance returns the balance of address in lamports.
	GetBalance(ctx context.Context, address string) (uint64, error)
}

// Broadcaster submits signed transactions.
type Broadcaster interface {
	// Broadcast submits the transaction without simulation and without waiting
	// for confirmation. It returns the submission id (the first signature).
	Broadcast(ctx context.Context, tx *solana.Transaction) (string, error)
}

// Network combines every network operation a transfer needs.
type Network interface {
	AnchorSource
	BalanceReader
	Broadcaster
}
