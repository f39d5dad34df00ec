package wallet

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/mrz1836/deaddrop/internal/metrics"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// Sign asks the wallet to sign tx exactly once. Any failure, including a
// user rejection or a signature that does not verify, is ErrSigningFailed.
func Sign(ctx context.Context, p Provider, tx *solana.Transaction) (*solana.Transaction, error) {
	if p == nil {
		return nil, droperr.WithCause(droperr.ErrSigningFailed, droperr.ErrWalletUnavailable)
	}

	signed, err := p.SignTransaction(ctx, tx)
	if err == nil {
		err = VerifyFeePayerSignature(signed)
	}
	metrics.Global.RecordWalletOp(err)
	if err != nil {
		return nil, droperr.WithCause(droperr.ErrSigningFailed, err)
	}

	return signed, nil
}

// VerifyFeePayerSignature checks that the first signature is the fee payer's
// signature over the message.
func VerifyFeePayerSignature(tx *solana.Transaction) error {
	if tx == nil || len(tx.Signatures) == 0 || len(tx.Message.AccountKeys) == 0 {
		return droperr.WithDetails(droperr.ErrSigningFailed, map[string]string{
			"reason": "wallet returned an unsigned transaction",
		})
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return err
	}

	if !tx.Signatures[0].Verify(tx.Message.AccountKeys[0], msg) {
		return droperr.WithDetails(droperr.ErrSigningFailed, map[string]string{
			"reason": "fee payer signature does not verify",
		})
	}

	return nil
}
