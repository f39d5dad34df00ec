// Package orchestrator runs transfer attempts: it resolves the vault, builds
// and signs the vault leg, broadcasts it, asks the relay for the second leg
// and reconciles everything into a single outcome.
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/displaystats"
	"github.com/mrz1836/deaddrop/internal/fee"
	"github.com/mrz1836/deaddrop/internal/metrics"
	"github.com/mrz1836/deaddrop/internal/narrator"
	"github.com/mrz1836/deaddrop/internal/relay"
	"github.com/mrz1836/deaddrop/internal/wallet"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// Config holds dependencies for the orchestrator.
type Config struct {
	Builder     TxBuilder
	Broadcaster chain.Broadcaster
	Wallet      wallet.Provider
	Session     SessionReader
	Fees        fee.Calculator

	// Relay is required when RelayEnabled is set.
	Relay        RelayGateway
	RelayEnabled bool

	// Vault is the fixed vault used when the relay is disabled.
	Vault string

	// Narrator plays while the transfer is in flight. Nil disables it.
	Narrator *narrator.Narrator

	// Stats decorates the result panel. Nil uses displaystats.New.
	Stats *displaystats.Generator

	Explorer string
	Cluster  string
	Logger   LogWriter
}

// Orchestrator runs one transfer attempt at a time.
type Orchestrator struct {
	builder      TxBuilder
	broadcaster  chain.Broadcaster
	wallet       wallet.Provider
	session      SessionReader
	fees         fee.Calculator
	relay        RelayGateway
	relayEnabled bool
	vault        string
	narrator     *narrator.Narrator
	stats        *displaystats.Generator
	explorer     string
	cluster      string
	logger       LogWriter

	inFlight atomic.Bool
}

// New creates an orchestrator.
func New(cfg *Config) *Orchestrator {
	o := &Orchestrator{
		builder:      cfg.Builder,
		broadcaster:  cfg.Broadcaster,
		wallet:       cfg.Wallet,
		session:      cfg.Session,
		fees:         cfg.Fees,
		relay:        cfg.Relay,
		relayEnabled: cfg.RelayEnabled,
		vault:        cfg.Vault,
		narrator:     cfg.Narrator,
		stats:        cfg.Stats,
		explorer:     cfg.Explorer,
		cluster:      cfg.Cluster,
		logger:       cfg.Logger,
	}
	if o.stats == nil {
		o.stats = displaystats.New()
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}
	return o
}

// RelayEnabled reports whether attempts take the two-leg route.
func (o *Orchestrator) RelayEnabled() bool {
	return o.relayEnabled
}

// Quote returns the fee breakdown for an amount as typed by the user.
func (o *Orchestrator) Quote(amount string) fee.Quote {
	return o.fees.Quote(amount)
}

// InFlight reports whether an attempt is running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// ValidateRequest checks the destination and amount. It makes no network
// or wallet call.
func ValidateRequest(req TransferRequest) (TransferRequest, error) {
	dest, err := chain.ValidateAddress(req.Destination)
	if err != nil {
		return req, droperr.WithCause(droperr.ErrInvalidInput, err)
	}
	if err := chain.ValidateAmount(req.Amount); err != nil {
		return req, droperr.WithCause(droperr.ErrInvalidInput, err)
	}
	req.Destination = dest.String()
	return req, nil
}

// Transfer runs one complete attempt and always returns an outcome. A
// second call while an attempt is running fails with ErrAttemptInProgress.
// r renders the narration; nil renders nothing.
func (o *Orchestrator) Transfer(ctx context.Context, req TransferRequest, r narrator.Renderer) *Outcome {
	if !o.inFlight.CompareAndSwap(false, true) {
		return &Outcome{
			State:       StateFailure,
			Destination: req.Destination,
			Err:         droperr.ErrAttemptInProgress,
		}
	}
	defer o.inFlight.Store(false)

	if r == nil {
		r = narrator.Discard{}
	}

	var session wallet.SessionState
	if o.session != nil {
		session = o.session.Snapshot()
	}
	oc := newContext(session, req)
	o.logger.Debug("attempt %s: start destination=%s amount=%g relay=%t",
		oc.ID, req.Destination, req.Amount, o.relayEnabled)

	out := o.run(ctx, oc, r)

	switch out.State {
	case StateSuccess:
		metrics.Global.RecordAttempt(metrics.OutcomeSuccess)
	case StatePartial:
		metrics.Global.RecordAttempt(metrics.OutcomePartial)
	default:
		metrics.Global.RecordAttempt(metrics.OutcomeFailure)
	}

	if out.Err != nil {
		o.logger.Error("attempt %s: %s after %s: %v", oc.ID, out.State, time.Since(oc.StartedAt), out.Err)
	} else {
		o.logger.Debug("attempt %s: %s after %s proof=%s", oc.ID, out.State, time.Since(oc.StartedAt), out.FinalSubmissionID)
	}
	o.logger.Debug("attempt %s: metrics %+v", oc.ID, metrics.Global.Snapshot())

	return out
}

func (o *Orchestrator) run(ctx context.Context, oc *OrchestrationContext, r narrator.Renderer) *Outcome {
	req, err := ValidateRequest(oc.Request)
	if err != nil {
		return o.fail(oc, err)
	}
	oc.Request = req

	if !oc.Session.Connected || oc.Session.PublicAddress == "" || o.wallet == nil {
		return o.fail(oc, droperr.WithSuggestion(droperr.ErrWalletUnavailable, "connect a wallet with 'deaddrop wallet import'"))
	}

	oc.Quote = o.fees.QuoteAmount(req.Amount)
	lamports := chain.ToLamports(oc.Quote.VaultAmount)
	if lamports == 0 {
		return o.fail(oc, droperr.WithCause(droperr.ErrInvalidInput,
			droperr.WithDetails(droperr.ErrInvalidAmount, map[string]string{"reason": "amount is below one lamport"})))
	}

	// Vault resolution happens before anything is built or signed.
	vault, err := o.resolveVault(ctx)
	if err != nil {
		return o.fail(oc, err)
	}
	oc.Vault = vault
	o.logger.Debug("attempt %s: vault %s", oc.ID, vault)

	leg := oc.addLeg(VaultLeg)
	leg.Lamports = lamports

	unsigned, err := o.builder.Build(ctx, oc.Session.PublicAddress, vault, lamports)
	if err != nil {
		leg.fail(err)
		return o.fail(oc, err)
	}
	leg.Unsigned = unsigned.Tx
	leg.Status = StatusBuilt

	if err := o.checkSession(oc); err != nil {
		leg.fail(err)
		return o.fail(oc, err)
	}

	signed, err := wallet.Sign(ctx, o.wallet, unsigned.Tx)
	if err != nil {
		leg.fail(err)
		return o.fail(oc, err)
	}
	leg.Signed = signed
	leg.Status = StatusSigned

	task := o.startNarration(ctx, r)

	sig, err := o.broadcaster.Broadcast(ctx, signed)
	if err != nil {
		if task != nil {
			task.Cancel()
		}
		leg.fail(err)
		return o.fail(oc, err)
	}
	leg.SubmissionID = sig
	leg.Status = StatusBroadcast
	o.logger.Debug("attempt %s: vault leg broadcast %s (%d lamports)", oc.ID, sig, lamports)

	var mix *relay.MixResult
	if o.relayEnabled {
		mix = o.requestMix(ctx, oc, sig)
	}

	if task != nil {
		_ = task.Wait()
	}

	res := Reconcile(leg, mix, o.relayEnabled)
	leg.Status = StatusReported
	return o.finish(oc, res)
}

func (o *Orchestrator) resolveVault(ctx context.Context) (string, error) {
	if !o.relayEnabled {
		pk, err := chain.ValidateAddress(o.vault)
		if err != nil {
			return "", droperr.WithDetails(err, map[string]string{"source": "config"})
		}
		return pk.String(), nil
	}

	if o.relay == nil {
		return "", droperr.WithDetails(droperr.ErrNetworkUnreachable, map[string]string{"reason": "relay is not configured"})
	}

	vault, err := o.relay.ResolveVault(ctx)
	if err != nil {
		return "", err
	}
	pk, err := chain.ValidateAddress(vault)
	if err != nil {
		return "", droperr.WithDetails(err, map[string]string{"source": "relay"})
	}
	return pk.String(), nil
}

// checkSession fails the attempt if the wallet disconnected or switched
// accounts since the attempt started.
func (o *Orchestrator) checkSession(oc *OrchestrationContext) error {
	if o.session == nil {
		return nil
	}
	now := o.session.Snapshot()
	if !now.Connected {
		return droperr.WithCause(droperr.ErrSigningFailed, droperr.ErrWalletUnavailable)
	}
	if now.PublicAddress != oc.Session.PublicAddress {
		return droperr.WithDetails(droperr.ErrSigningFailed, map[string]string{
			"reason": "wallet account changed during the transfer",
		})
	}
	return nil
}

func (o *Orchestrator) startNarration(ctx context.Context, r narrator.Renderer) *narrator.Task {
	if o.narrator == nil {
		return nil
	}
	return o.narrator.Start(ctx, r)
}

func (o *Orchestrator) requestMix(ctx context.Context, oc *OrchestrationContext, vaultTx string) *relay.MixResult {
	leg := oc.addLeg(RelayLeg)

	mix := o.relay.RequestMix(ctx, relay.MixRequest{
		From:    oc.Session.PublicAddress,
		To:      oc.Request.Destination,
		Amount:  oc.Request.Amount,
		VaultTx: vaultTx,
	})
	if mix == nil {
		mix = &relay.MixResult{Reason: "relay did not answer"}
	}

	if mix.Success && mix.TxHash != "" {
		leg.SubmissionID = mix.TxHash
		leg.Status = StatusReported
		o.logger.Debug("attempt %s: relay leg %s", oc.ID, mix.TxHash)
		return mix
	}

	leg.fail(droperr.WithDetails(droperr.ErrRelayFailed, map[string]string{"reason": mix.Reason}))
	o.logger.Error("attempt %s: relay failed: %s", oc.ID, mix.Reason)
	return mix
}

func (o *Orchestrator) fail(oc *OrchestrationContext, err error) *Outcome {
	out := o.outcome(oc)
	out.State = StateFailure
	out.Err = err
	return out
}

func (o *Orchestrator) finish(oc *OrchestrationContext, res Resolution) *Outcome {
	if res.State == StateFailure {
		return o.fail(oc, res.Err)
	}

	out := o.outcome(oc)
	out.State = res.State
	out.FinalSubmissionID = res.ProofID
	out.RelayReason = res.RelayReason
	out.ExplorerLink = res.RelayLink
	if out.ExplorerLink == "" {
		out.ExplorerLink = chain.ExplorerTxURL(o.explorer, o.cluster, res.ProofID)
	}
	stats := o.stats.Generate()
	out.Stats = &stats
	return out
}

func (o *Orchestrator) outcome(oc *OrchestrationContext) *Outcome {
	return &Outcome{
		AttemptID:   oc.ID,
		Sender:      oc.Session.PublicAddress,
		Destination: oc.Request.Destination,
		Vault:       oc.Vault,
		Quote:       oc.Quote,
		Legs:        oc.Legs,
	}
}
