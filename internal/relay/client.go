// Package relay is a client for the relay service that forwards funds from
// the vault to the final destination.
package relay

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/metrics"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

const (
	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 60 * time.Second

	// maxResponseBody is the maximum response body size to read (1 MB).
	maxResponseBody = 1 << 20
)

// Health is the relay's self-reported status.
type Health struct {
	Status string `json:"status"`
}

// OK reports whether the relay says it is healthy.
func (h Health) OK() bool {
	s := strings.ToLower(h.Status)
	return s == "ok" || s == "healthy" || s == "online" || s == "up"
}

// MixRequest asks the relay to forward Amount SOL from the vault to To.
// VaultTx is the signature of the leg that funded the vault.
type MixRequest struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
	VaultTx string  `json:"vaultTx"`
}

// MixResult is the relay's answer to a mix request. Reason is set when
// Success is false.
type MixResult struct {
	Success      bool   `json:"success"`
	TxHash       string `json:"txHash,omitempty"`
	ExplorerLink string `json:"explorerLink,omitempty"`
	Reason       string `json:"error,omitempty"`
}

type walletsResponse struct {
	Vault string `json:"vault"`
}

// ClientOptions configures the relay client.
type ClientOptions struct {
	// Timeout bounds each request. Zero uses 60s.
	Timeout time.Duration

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client

	// RateLimiter throttles requests to the relay host. Nil uses
	// chain.DefaultRateLimiter.
	RateLimiter *chain.RateLimiter
}

// Client talks to the relay HTTP API. Every call is a single attempt.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter
}

// NewClient creates a relay client for baseURL.
func NewClient(baseURL string, opts *ClientOptions) *Client {
	timeout := httpTimeout
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: chain.DefaultRateLimiter(),
	}

	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.RateLimiter != nil {
			c.rateLimiter = opts.RateLimiter
		}
		c.httpClient = opts.HTTPClient
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		}
	}

	return c
}

// BaseURL returns the relay URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health queries GET /health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	status, body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return h, droperr.WithCause(droperr.ErrNetworkUnreachable, err)
	}
	if status != http.StatusOK {
		return h, droperr.WithDetails(droperr.ErrNetworkUnreachable, map[string]string{
			"status": fmt.Sprintf("%d", status),
		})
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return h, droperr.WithCause(droperr.ErrNetworkUnreachable, fmt.Errorf("parsing health: %w", err))
	}
	return h, nil
}

// ResolveVault asks the relay which vault the first leg must fund. The
// address is validated before it is returned.
func (c *Client) ResolveVault(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/wallets", nil)
	if err != nil {
		return "", droperr.WithCause(droperr.ErrNetworkUnreachable, err)
	}
	if status != http.StatusOK {
		return "", droperr.WithDetails(droperr.ErrNetworkUnreachable, map[string]string{
			"status": fmt.Sprintf("%d", status),
			"body":   truncateBody(string(body), 256),
		})
	}

	var resp walletsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", droperr.WithCause(droperr.ErrNetworkUnreachable, fmt.Errorf("parsing vault response: %w", err))
	}

	pk, err := chain.ValidateAddress(resp.Vault)
	if err != nil {
		return "", droperr.WithDetails(err, map[string]string{"source": "relay"})
	}
	return pk.String(), nil
}

// RequestMix posts the second-leg request. It never returns an error: a
// transport failure, an unexpected status or a success=false answer all
// become a failed MixResult with the reason filled in.
func (c *Client) RequestMix(ctx context.Context, req MixRequest) *MixResult {
	payload, err := json.Marshal(req)
	if err != nil {
		return failed(err.Error())
	}

	status, body, err := c.do(ctx, http.MethodPost, "/transfer", payload)
	if err != nil {
		return failed(err.Error())
	}

	var result MixResult
	if jsonErr := json.Unmarshal(body, &result); jsonErr != nil {
		if status != http.StatusOK {
			return failed(fmt.Sprintf("relay returned HTTP %d", status))
		}
		return failed("unreadable relay response")
	}

	if !result.Success {
		if result.Reason == "" {
			result.Reason = fmt.Sprintf("relay returned HTTP %d", status)
		}
		return &result
	}
	if result.TxHash == "" {
		return failed("relay reported success without a transaction hash")
	}
	return &result
}

func failed(reason string) *MixResult {
	return &MixResult{Success: false, Reason: reason}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (status int, body []byte, err error) {
	defer func() { metrics.Global.RecordRelayCall(err) }()

	if err = c.rateLimiter.Wait(ctx, c.baseURL); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq) //nolint:gosec // G704: URL comes from validated config
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// truncateBody truncates a string to maxLen characters.
func truncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
