package orchestrator

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/mrz1836/deaddrop/internal/displaystats"
	"github.com/mrz1836/deaddrop/internal/fee"
	"github.com/mrz1836/deaddrop/internal/wallet"
)

// TransferRequest is what the user asked for. Amount is the base amount in
// SOL, before fees.
type TransferRequest struct {
	Destination string  `json:"destination"`
	Amount      float64 `json:"amount"`
}

// LegKind identifies a leg of an attempt.
type LegKind string

// Leg kinds.
const (
	VaultLeg LegKind = "vault"
	RelayLeg LegKind = "relay"
)

// LegStatus is the progress of one leg. It moves Built, Signed, Broadcast,
// then Reported or Failed.
type LegStatus string

// Leg statuses.
const (
	StatusPending   LegStatus = "pending"
	StatusBuilt     LegStatus = "built"
	StatusSigned    LegStatus = "signed"
	StatusBroadcast LegStatus = "broadcast"
	StatusReported  LegStatus = "reported"
	StatusFailed    LegStatus = "failed"
)

// TransactionAttempt is one leg of a transfer. SubmissionID is set only
// once the leg has been broadcast.
type TransactionAttempt struct {
	Kind         LegKind             `json:"kind"`
	Unsigned     *solana.Transaction `json:"-"`
	Signed       *solana.Transaction `json:"-"`
	Lamports     uint64              `json:"lamports,omitempty"`
	SubmissionID string              `json:"submission_id,omitempty"`
	Status       LegStatus           `json:"status"`
	Err          error               `json:"-"`
}

func (a *TransactionAttempt) fail(err error) {
	a.Status = StatusFailed
	a.Err = err
}

// State is the terminal state of an attempt.
type State string

// Terminal states.
const (
	StateSuccess State = "success"
	StatePartial State = "partial_success_fallback"
	StateFailure State = "failure"
)

// Outcome is the single result of an attempt.
type Outcome struct {
	AttemptID         string                `json:"attempt_id"`
	State             State                 `json:"state"`
	FinalSubmissionID string                `json:"final_submission_id,omitempty"`
	ExplorerLink      string                `json:"explorer_link,omitempty"`
	RelayReason       string                `json:"relay_reason,omitempty"`
	Sender            string                `json:"sender,omitempty"`
	Destination       string                `json:"destination"`
	Vault             string                `json:"vault,omitempty"`
	Quote             fee.Quote             `json:"quote"`
	Legs              []*TransactionAttempt `json:"legs"`
	Stats             *displaystats.Stats   `json:"display_stats,omitempty"`
	Err               error                 `json:"-"`
}

// FundsMoved reports whether the vault leg left the wallet.
func (o *Outcome) FundsMoved() bool {
	return o.State == StateSuccess || o.State == StatePartial
}

// Leg returns the leg of the given kind, or nil.
func (o *Outcome) Leg(kind LegKind) *TransactionAttempt {
	for _, l := range o.Legs {
		if l.Kind == kind {
			return l
		}
	}
	return nil
}

// OrchestrationContext carries everything one attempt knows. A new value is
// created for every attempt and discarded when it ends.
type OrchestrationContext struct {
	ID        string
	StartedAt time.Time
	Session   wallet.SessionState
	Request   TransferRequest
	Quote     fee.Quote
	Vault     string
	Legs      []*TransactionAttempt
}

func newContext(session wallet.SessionState, req TransferRequest) *OrchestrationContext {
	return &OrchestrationContext{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Session:   session,
		Request:   req,
	}
}

func (oc *OrchestrationContext) addLeg(kind LegKind) *TransactionAttempt {
	l := &TransactionAttempt{Kind: kind, Status: StatusPending}
	oc.Legs = append(oc.Legs, l)
	return l
}
