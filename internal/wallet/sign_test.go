package wallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/wallet"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

var errUserRejected = errors.New("user rejected the request")

// stubProvider signs with key, or fails with err.
type stubProvider struct {
	key      solana.PrivateKey
	err      error
	tamper   bool
	bus      *wallet.Bus
	signCall int
}

func (s *stubProvider) Connect(context.Context, wallet.ConnectOptions) (string, error) {
	return s.key.PublicKey().String(), nil
}

func (s *stubProvider) Disconnect() error { return nil }

func (s *stubProvider) Events() *wallet.Bus { return s.bus }

func (s *stubProvider) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	s.signCall++
	if s.err != nil {
		return nil, s.err
	}
	signed := &solana.Transaction{Message: tx.Message}
	_, err := signed.Sign(func(solana.PublicKey) *solana.PrivateKey { return &s.key })
	if err != nil {
		return nil, err
	}
	if s.tamper {
		signed.Signatures[0][0] ^= 0xff
	}
	return signed, nil
}

func unsignedTransfer(t *testing.T, payer solana.PublicKey) *solana.Transaction {
	t.Helper()
	to := solana.MustPublicKeyFromBase58(testAddress)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1000, payer, to).Build()},
		solana.Hash{7},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)
	return tx
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func TestSign_Success(t *testing.T) {
	t.Parallel()
	key := newKey(t)
	p := &stubProvider{key: key}
	tx := unsignedTransfer(t, key.PublicKey())

	signed, err := wallet.Sign(context.Background(), p, tx)
	require.NoError(t, err)
	require.Len(t, signed.Signatures, 1)
	assert.Empty(t, tx.Signatures, "input transaction is untouched")
	assert.Equal(t, 1, p.signCall)
}

func TestSign_RejectionIsSigningFailed(t *testing.T) {
	t.Parallel()
	key := newKey(t)
	p := &stubProvider{key: key, err: errUserRejected}

	_, err := wallet.Sign(context.Background(), p, unsignedTransfer(t, key.PublicKey()))
	require.ErrorIs(t, err, droperr.ErrSigningFailed)
	require.ErrorIs(t, err, errUserRejected)
	assert.Equal(t, droperr.ExitWallet, droperr.ExitCode(err))
	assert.Equal(t, 1, p.signCall, "signing is never retried")
}

func TestSign_BadSignature(t *testing.T) {
	t.Parallel()
	key := newKey(t)
	p := &stubProvider{key: key, tamper: true}

	_, err := wallet.Sign(context.Background(), p, unsignedTransfer(t, key.PublicKey()))
	require.ErrorIs(t, err, droperr.ErrSigningFailed)
}

func TestSign_NilProvider(t *testing.T) {
	t.Parallel()
	_, err := wallet.Sign(context.Background(), nil, &solana.Transaction{})
	require.ErrorIs(t, err, droperr.ErrSigningFailed)
	require.ErrorIs(t, err, droperr.ErrWalletUnavailable)
}

func TestVerifyFeePayerSignature_Unsigned(t *testing.T) {
	t.Parallel()
	key := newKey(t)
	err := wallet.VerifyFeePayerSignature(unsignedTransfer(t, key.PublicKey()))
	require.ErrorIs(t, err, droperr.ErrSigningFailed)
	require.ErrorIs(t, wallet.VerifyFeePayerSignature(nil), droperr.ErrSigningFailed)
}
