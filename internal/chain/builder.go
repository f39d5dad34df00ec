package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// UnsignedTx is a transfer transaction awaiting a signature.
type UnsignedTx struct {
	Tx        *solana.Transaction
	Sender    solana.PublicKey
	Recipient solana.PublicKey
	Lamports  uint64
	Anchor    Anchor
}

// Builder assembles single-instruction system transfers.
type Builder struct {
	anchors AnchorSource
}

// NewBuilder creates a builder that anchors every transaction it builds with
// a blockhash fetched from anchors at build time.
func NewBuilder(anchors AnchorSource) *Builder {
	return &Builder{anchors: anchors}
}

// Build creates an unsigned transfer of lamports from sender to recipient with
// sender as fee payer. Addresses are validated before any network call.
func (b *Builder) Build(ctx context.Context, sender, recipient string, lamports uint64) (*UnsignedTx, error) {
	from, err := ValidateAddress(sender)
	if err != nil {
		return nil, err
	}

	to, err := ValidateAddress(recipient)
	if err != nil {
		return nil, err
	}

	if lamports == 0 {
		return nil, droperr.WithDetails(droperr.ErrInvalidAmount, map[string]string{
			"reason": "amount rounds down to zero lamports",
		})
	}

	anchor, err := b.anchors.LatestAnchor(ctx)
	if err != nil {
		return nil, droperr.WithCause(droperr.ErrNetworkUnreachable, err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, from, to).Build(),
		},
		anchor.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("building transfer: %w", err)
	}

	return &UnsignedTx{
		Tx:        tx,
		Sender:    from,
		Recipient: to,
		Lamports:  lamports,
		Anchor:    anchor,
	}, nil
}
