package orchestrator

import (
	"github.com/mrz1836/deaddrop/internal/relay"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// Resolution is the verdict of Reconcile.
type Resolution struct {
	State State

	// ProofID is the submission shown to the user as proof of sending.
	ProofID string

	// RelayLink is the explorer link reported by the relay, if any.
	RelayLink string

	// RelayReason explains a relay failure in the fallback state.
	RelayReason string

	// Err is set only for StateFailure.
	Err error
}

// Reconcile folds the vault leg and the relay answer into one terminal
// state. mix is ignored when relayEnabled is false.
//
// A vault leg without a submission ID is a failure: nothing left the
// wallet. Once it has one, the result is never a failure; a relay that did
// not succeed degrades to the fallback state with the vault leg as proof.
func Reconcile(vaultLeg *TransactionAttempt, mix *relay.MixResult, relayEnabled bool) Resolution {
	if vaultLeg == nil || vaultLeg.SubmissionID == "" {
		var err error = droperr.ErrGeneral
		if vaultLeg != nil && vaultLeg.Err != nil {
			err = vaultLeg.Err
		}
		return Resolution{State: StateFailure, Err: err}
	}

	if !relayEnabled {
		return Resolution{State: StateSuccess, ProofID: vaultLeg.SubmissionID}
	}

	if mix != nil && mix.Success && mix.TxHash != "" {
		return Resolution{State: StateSuccess, ProofID: mix.TxHash, RelayLink: mix.ExplorerLink}
	}

	reason := "relay did not answer"
	if mix != nil && mix.Reason != "" {
		reason = mix.Reason
	}
	return Resolution{State: StatePartial, ProofID: vaultLeg.SubmissionID, RelayReason: reason}
}
