package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/displaystats"
	"github.com/mrz1836/deaddrop/internal/fee"
	"github.com/mrz1836/deaddrop/internal/orchestrator"
	"github.com/mrz1836/deaddrop/internal/output"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

func sampleOutcome(state orchestrator.State) *orchestrator.Outcome {
	stats := displaystats.Stats{PoolUsers: 115234, AnonymityScore: 99.9}
	out := &orchestrator.Outcome{
		AttemptID:         "attempt-1",
		State:             state,
		FinalSubmissionID: "proof-sig",
		ExplorerLink:      "https://explorer.solana.com/tx/proof-sig",
		Destination:       "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
		Vault:             "JChojPahR9scTF63ETisQ6YGTuhkq5B1Ud9w1XkanyRT",
		Quote:             fee.NewCalculator().QuoteAmount(2),
		Legs: []*orchestrator.TransactionAttempt{
			{Kind: orchestrator.VaultLeg, Status: orchestrator.StatusReported, Lamports: 2007000000, SubmissionID: "proof-sig"},
		},
		Stats: &stats,
	}
	return out
}

func TestRenderQuote(t *testing.T) {
	t.Parallel()
	q := fee.NewCalculator().QuoteAmount(2)

	var text bytes.Buffer
	require.NoError(t, output.RenderQuote(&text, q, fee.DefaultPercent, output.FormatText))
	assert.Contains(t, text.String(), "0.007000 SOL")
	assert.Contains(t, text.String(), "2.007005 SOL")
	assert.Contains(t, text.String(), "SERVICE FEE (0.35%)")

	var js bytes.Buffer
	require.NoError(t, output.RenderQuote(&js, q, fee.DefaultPercent, output.FormatJSON))
	var view output.QuoteView
	require.NoError(t, json.Unmarshal(js.Bytes(), &view))
	assert.Equal(t, output.QuoteView{
		Amount:     "2.000000",
		ServiceFee: "0.007000",
		VaultLeg:   "2.007000",
		Total:      "2.007005",
		FeePercent: "0.35",
	}, view)
}

func TestRenderOutcome_SuccessText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.RenderOutcome(&buf, sampleOutcome(orchestrator.StateSuccess), fee.DefaultPercent, output.FormatText))

	out := buf.String()
	assert.Contains(t, out, "DEAD DROP COMPLETE")
	assert.Contains(t, out, "PROOF: proof-sig")
	assert.Contains(t, out, "99.90%")
	assert.Contains(t, out, "115,234 USERS")
	assert.Contains(t, out, "https://explorer.solana.com/tx/proof-sig")
	assert.NotContains(t, out, "RELAY:")
}

func TestRenderOutcome_PartialText(t *testing.T) {
	t.Parallel()
	o := sampleOutcome(orchestrator.StatePartial)
	o.RelayReason = "relay offline"

	var buf bytes.Buffer
	require.NoError(t, output.RenderOutcome(&buf, o, fee.DefaultPercent, output.FormatText))

	out := buf.String()
	assert.Contains(t, out, "SENT (RELAY FALLBACK)")
	assert.Contains(t, out, "RELAY: relay offline")
	assert.Contains(t, out, "PROOF: proof-sig")
}

func TestRenderOutcome_StripsControlCharacters(t *testing.T) {
	t.Parallel()
	o := sampleOutcome(orchestrator.StatePartial)
	o.FinalSubmissionID = "proof\x1b[2Jsig"
	o.ExplorerLink = "https://explorer.solana.com/tx/x\x1b]8;;evil\x07"
	o.RelayReason = "relay \x1b[31moffline\r"

	var buf bytes.Buffer
	require.NoError(t, output.RenderOutcome(&buf, o, fee.DefaultPercent, output.FormatText))

	out := buf.String()
	assert.NotContains(t, out, "\x1b[2J")
	assert.NotContains(t, out, "\x1b]8")
	assert.NotContains(t, out, "\x07")
	assert.NotContains(t, out, "\x1b[31m")
	assert.Contains(t, out, "PROOF: proof[2Jsig")
	assert.Contains(t, out, "https://explorer.solana.com/tx/x]8;;evil")
	assert.Contains(t, out, "relay [31moffline")
}

func TestRenderOutcome_FailureText(t *testing.T) {
	t.Parallel()
	o := &orchestrator.Outcome{State: orchestrator.StateFailure, Err: droperr.ErrBroadcastFailed}

	var buf bytes.Buffer
	require.NoError(t, output.RenderOutcome(&buf, o, fee.DefaultPercent, output.FormatText))

	out := buf.String()
	assert.Contains(t, out, droperr.ErrBroadcastFailed.Message)
	assert.Contains(t, out, "No funds moved")
	assert.NotContains(t, out, "PROOF")
}

func TestRenderOutcome_JSON(t *testing.T) {
	t.Parallel()
	o := sampleOutcome(orchestrator.StatePartial)
	o.RelayReason = "relay offline"
	o.Legs = append(o.Legs, &orchestrator.TransactionAttempt{
		Kind:   orchestrator.RelayLeg,
		Status: orchestrator.StatusFailed,
		Err:    droperr.ErrRelayFailed,
	})

	var buf bytes.Buffer
	require.NoError(t, output.RenderOutcome(&buf, o, fee.DefaultPercent, output.FormatJSON))

	var view output.OutcomeView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "partial_success_fallback", view.State)
	assert.Equal(t, "proof-sig", view.Proof)
	assert.Equal(t, "relay offline", view.RelayReason)
	require.Len(t, view.Legs, 2)
	assert.Equal(t, "vault", view.Legs[0].Kind)
	assert.Equal(t, uint64(2007000000), view.Legs[0].Lamports)
	assert.Equal(t, droperr.ErrRelayFailed.Message, view.Legs[1].Error)
	require.NotNil(t, view.Display)
	assert.Equal(t, "99.90%", view.Display.AnonymityScore)
	assert.Nil(t, view.Error)
}

func TestRenderOutcome_FailureJSON(t *testing.T) {
	t.Parallel()
	o := &orchestrator.Outcome{AttemptID: "a", State: orchestrator.StateFailure, Err: droperr.ErrSigningFailed}

	var buf bytes.Buffer
	require.NoError(t, output.RenderOutcome(&buf, o, fee.DefaultPercent, output.FormatJSON))

	var view output.OutcomeView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "failure", view.State)
	require.NotNil(t, view.Error)
	assert.Equal(t, droperr.ErrSigningFailed.Code, view.Error.Code)
	assert.Nil(t, view.Display)
}
