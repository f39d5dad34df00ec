package orchestrator

import (
	"context"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/relay"
	"github.com/mrz1836/deaddrop/internal/wallet"
)

// TxBuilder builds an unsigned transfer against a freshly fetched anchor.
type TxBuilder interface {
	Build(ctx context.Context, sender, recipient string, lamports uint64) (*chain.UnsignedTx, error)
}

// RelayGateway is the relay service as seen by an attempt.
type RelayGateway interface {
	ResolveVault(ctx context.Context) (string, error)
	RequestMix(ctx context.Context, req relay.MixRequest) *relay.MixResult
}

// SessionReader exposes the wallet session.
type SessionReader interface {
	Snapshot() wallet.SessionState
}

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
