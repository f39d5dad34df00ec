package chain

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/mrz1836/deaddrop/internal/metrics"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// ClientOptions contains optional configuration for the RPC client.
type ClientOptions struct {
	// Timeout bounds each RPC call. Zero uses 30s.
	Timeout time.Duration

	// RateLimiter throttles calls to the RPC host. Nil uses DefaultRateLimiter.
	RateLimiter *RateLimiter

	// Retry configures retries of read-only calls.
	Retry *RetryConfig

	// Commitment used for reads. Empty uses finalized.
	Commitment rpc.CommitmentType
}

// Client talks to a Solana JSON-RPC endpoint.
type Client struct {
	endpoint   string
	rpc        *rpc.Client
	limiter    *RateLimiter
	timeout    time.Duration
	retry      RetryConfig
	commitment rpc.CommitmentType
}

// NewClient creates a client for the RPC endpoint.
func NewClient(endpoint string, opts *ClientOptions) *Client {
	c := &Client{
		endpoint:   endpoint,
		rpc:        rpc.New(endpoint),
		limiter:    DefaultRateLimiter(),
		timeout:    defaultTimeout,
		retry:      DefaultRetryConfig(),
		commitment: rpc.CommitmentFinalized,
	}

	if opts != nil {
		if opts.Timeout > 0 {
			c.timeout = opts.Timeout
		}
		if opts.RateLimiter != nil {
			c.limiter = opts.RateLimiter
		}
		if opts.Retry != nil {
			c.retry = *opts.Retry
		}
		if opts.Commitment != "" {
			c.commitment = opts.Commitment
		}
	}

	return c
}

// Endpoint returns the RPC URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close releases the underlying HTTP connections.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// LatestAnchor returns the most recent blockhash. It is not retried: a
// failure aborts the attempt before anything is signed.
func (c *Client) LatestAnchor(ctx context.Context) (Anchor, error) {
	var anchor Anchor

	err := c.call(ctx, func(ctx context.Context) error {
		out, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
		if err != nil {
			return err
		}
		if out == nil || out.Value == nil {
			return droperr.WithDetails(droperr.ErrNetworkUnreachable, map[string]string{
				"rpc": "empty getLatestBlockhash response",
			})
		}
		anchor = Anchor{
			Blockhash:            out.Value.Blockhash,
			LastValidBlockHeight: out.Value.LastValidBlockHeight,
		}
		return nil
	})
	if err != nil {
		return Anchor{}, droperr.WithCause(droperr.ErrNetworkUnreachable, err)
	}

	return anchor, nil
}

// GetBalance returns the balance of address in lamports.
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	pk, err := ValidateAddress(address)
	if err != nil {
		return 0, err
	}

	balance, err := RetryWithConfig(ctx, c.retry, func() (uint64, error) {
		var lamports uint64
		callErr := c.call(ctx, func(ctx context.Context) error {
			out, err := c.rpc.GetBalance(ctx, pk, c.commitment)
			if err != nil {
				return classifyRPCError(err)
			}
			lamports = out.Value
			return nil
		})
		return lamports, callErr
	})
	if err != nil {
		return 0, droperr.WithCause(droperr.ErrNetworkUnreachable, err)
	}

	return balance, nil
}

// Broadcast submits a signed transaction with preflight simulation skipped
// and returns its first signature. It does not wait for confirmation.
func (c *Client) Broadcast(ctx context.Context, tx *solana.Transaction) (string, error) {
	if tx == nil || len(tx.Signatures) == 0 {
		return "", droperr.WithDetails(droperr.ErrBroadcastFailed, map[string]string{
			"reason": "transaction is not signed",
		})
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", droperr.WithCause(droperr.ErrBroadcastFailed, err)
	}

	var sig solana.Signature
	err = c.call(ctx, func(ctx context.Context) error {
		var sendErr error
		sig, sendErr = c.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: c.commitment,
		})
		return sendErr
	})
	if err != nil {
		return "", droperr.WithCause(droperr.ErrBroadcastFailed, err)
	}

	return sig.String(), nil
}

// call applies the rate limit and per-call timeout, and records metrics.
func (c *Client) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.Global.RecordRPCCall(time.Since(start), err)
	return err
}
