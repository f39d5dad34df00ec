package chain_test

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/chain"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

var errRPCDown = errors.New("connection refused")

type fakeAnchors struct {
	calls int
	err   error
}

func (f *fakeAnchors) LatestAnchor(context.Context) (chain.Anchor, error) {
	f.calls++
	if f.err != nil {
		return chain.Anchor{}, f.err
	}
	var h solana.Hash
	h[0] = byte(f.calls)
	return chain.Anchor{Blockhash: h, LastValidBlockHeight: uint64(100 + f.calls)}, nil
}

func newSender(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()
	anchors := &fakeAnchors{}
	sender := newSender(t)

	utx, err := chain.NewBuilder(anchors).Build(context.Background(), sender.PublicKey().String(), testVault, 1_003_500_000)
	require.NoError(t, err)
	require.NotNil(t, utx.Tx)

	msg := utx.Tx.Message
	assert.Equal(t, sender.PublicKey(), msg.AccountKeys[0], "sender is fee payer")
	assert.Equal(t, utx.Anchor.Blockhash, msg.RecentBlockhash)
	assert.Equal(t, uint64(101), utx.Anchor.LastValidBlockHeight)
	assert.Equal(t, uint64(1_003_500_000), utx.Lamports)

	require.Len(t, msg.Instructions, 1)
	inst := msg.Instructions[0]
	assert.Equal(t, solana.SystemProgramID, msg.AccountKeys[inst.ProgramIDIndex])

	data := []byte(inst.Data)
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]), "system transfer discriminant")
	assert.Equal(t, uint64(1_003_500_000), binary.LittleEndian.Uint64(data[4:]))

	require.Len(t, inst.Accounts, 2)
	assert.Equal(t, sender.PublicKey(), msg.AccountKeys[inst.Accounts[0]])
	assert.Equal(t, testVault, msg.AccountKeys[inst.Accounts[1]].String())
}

func TestBuilder_Build_FreshAnchorPerLeg(t *testing.T) {
	t.Parallel()
	anchors := &fakeAnchors{}
	b := chain.NewBuilder(anchors)
	sender := newSender(t).PublicKey().String()

	first, err := b.Build(context.Background(), sender, testVault, 1)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), sender, testVault, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, anchors.calls)
	assert.NotEqual(t, first.Anchor.Blockhash, second.Anchor.Blockhash)
}

func TestBuilder_Build_InvalidRecipientBeforeNetwork(t *testing.T) {
	t.Parallel()
	anchors := &fakeAnchors{}

	_, err := chain.NewBuilder(anchors).Build(context.Background(), newSender(t).PublicKey().String(), "short", 10)
	require.ErrorIs(t, err, droperr.ErrInvalidAddress)
	assert.Equal(t, 0, anchors.calls)
}

func TestBuilder_Build_ZeroLamports(t *testing.T) {
	t.Parallel()
	anchors := &fakeAnchors{}

	_, err := chain.NewBuilder(anchors).Build(context.Background(), newSender(t).PublicKey().String(), testVault, 0)
	require.ErrorIs(t, err, droperr.ErrInvalidAmount)
	assert.Equal(t, 0, anchors.calls)
}

func TestBuilder_Build_AnchorFailure(t *testing.T) {
	t.Parallel()
	anchors := &fakeAnchors{err: errRPCDown}

	_, err := chain.NewBuilder(anchors).Build(context.Background(), newSender(t).PublicKey().String(), testVault, 10)
	require.ErrorIs(t, err, droperr.ErrNetworkUnreachable)
	require.ErrorIs(t, err, errRPCDown)
}
