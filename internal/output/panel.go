package output

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pterm/pterm"

	"github.com/mrz1836/deaddrop/internal/fee"
	"github.com/mrz1836/deaddrop/internal/orchestrator"
)

// QuoteView is the JSON form of a fee preview.
type QuoteView struct {
	Amount     string `json:"amount"`
	ServiceFee string `json:"service_fee"`
	VaultLeg   string `json:"vault_leg"`
	Total      string `json:"total"`
	FeePercent string `json:"fee_percent"`
}

// NewQuoteView formats q with six decimals.
func NewQuoteView(q fee.Quote, percent float64) QuoteView {
	return QuoteView{
		Amount:     sol6(q.BaseAmount),
		ServiceFee: sol6(q.ServiceFee),
		VaultLeg:   sol6(q.VaultAmount),
		Total:      sol6(q.TotalDebit),
		FeePercent: fmt.Sprintf("%g", percent),
	}
}

func sol6(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// RenderQuote writes the fee preview.
func RenderQuote(w io.Writer, q fee.Quote, percent float64, format Format) error {
	view := NewQuoteView(q, percent)
	if format == FormatJSON {
		return writeJSON(w, view)
	}

	table, err := pterm.DefaultTable.WithData(pterm.TableData{
		{"AMOUNT", view.Amount + " SOL"},
		{"SERVICE FEE (" + view.FeePercent + "%)", view.ServiceFee + " SOL"},
		{"TOTAL DEBIT", pterm.Bold.Sprint(view.Total + " SOL")},
	}).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

// OutcomeView is the JSON form of an attempt outcome.
type OutcomeView struct {
	AttemptID    string       `json:"attempt_id"`
	State        string       `json:"state"`
	Proof        string       `json:"proof,omitempty"`
	ExplorerLink string       `json:"explorer_link,omitempty"`
	RelayReason  string       `json:"relay_reason,omitempty"`
	Sender       string       `json:"sender,omitempty"`
	Destination  string       `json:"destination"`
	Vault        string       `json:"vault,omitempty"`
	Quote        QuoteView    `json:"quote"`
	Legs         []LegView    `json:"legs"`
	Display      *DisplayView `json:"display,omitempty"`
	Error        *ErrorDetail `json:"error,omitempty"`
}

// LegView is the JSON form of one leg.
type LegView struct {
	Kind         string `json:"kind"`
	Status       string `json:"status"`
	Lamports     uint64 `json:"lamports,omitempty"`
	SubmissionID string `json:"submission_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// DisplayView carries the decorative figures. They are random, not measured.
type DisplayView struct {
	AnonymityScore string `json:"anonymity_score"`
	PoolUsers      int    `json:"pool_users"`
	Note           string `json:"note"`
}

// NewOutcomeView flattens out for JSON output.
func NewOutcomeView(out *orchestrator.Outcome, percent float64) OutcomeView {
	v := OutcomeView{
		AttemptID:    out.AttemptID,
		State:        string(out.State),
		Proof:        out.FinalSubmissionID,
		ExplorerLink: out.ExplorerLink,
		RelayReason:  out.RelayReason,
		Sender:       out.Sender,
		Destination:  out.Destination,
		Vault:        out.Vault,
		Quote:        NewQuoteView(out.Quote, percent),
		Legs:         make([]LegView, 0, len(out.Legs)),
	}

	for _, l := range out.Legs {
		lv := LegView{
			Kind:         string(l.Kind),
			Status:       string(l.Status),
			Lamports:     l.Lamports,
			SubmissionID: l.SubmissionID,
		}
		if l.Err != nil {
			lv.Error = l.Err.Error()
		}
		v.Legs = append(v.Legs, lv)
	}

	if out.Stats != nil {
		v.Display = &DisplayView{
			AnonymityScore: out.Stats.AnonymityText(),
			PoolUsers:      out.Stats.PoolUsers,
			Note:           "decorative values, not measured",
		}
	}

	if out.Err != nil {
		d := NewErrorDetail(out.Err)
		v.Error = &d
	}
	return v
}

// RenderOutcome writes the result panel for a completed attempt. Failures
// are written with FormatError.
func RenderOutcome(w io.Writer, out *orchestrator.Outcome, percent float64, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, NewOutcomeView(out, percent))
	}

	if out.State == orchestrator.StateFailure {
		if err := FormatError(w, out.Err, format); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "No funds moved. You can try again.")
		return err
	}

	title := pterm.LightGreen("DEAD DROP COMPLETE")
	status := "SENT"
	if out.State == orchestrator.StatePartial {
		title = pterm.Yellow("DEAD DROP SENT TO VAULT")
		status = "SENT (RELAY FALLBACK)"
	}

	rows := pterm.TableData{
		{pterm.Gray("STATUS"), status},
	}
	if out.Stats != nil {
		rows = append(rows,
			[]string{pterm.Gray("ANONYMITY SCORE"), pterm.Cyan(out.Stats.AnonymityText())},
			[]string{pterm.Gray("GLOBAL POOL VOLUME"), pterm.Magenta(out.Stats.PoolUsersText() + " USERS")},
		)
	}
	rows = append(rows, []string{pterm.Gray("AMOUNT"), sol6(out.Quote.BaseAmount) + " SOL"})

	table, err := pterm.DefaultTable.WithData(rows).Srender()
	if err != nil {
		return err
	}

	var body strings.Builder
	body.WriteString(table)
	body.WriteString("\n\nPROOF: " + printable(out.FinalSubmissionID))
	if link := printable(out.ExplorerLink); link != "" {
		body.WriteString("\n" + link)
	}
	if reason := printable(out.RelayReason); reason != "" {
		body.WriteString("\n\n" + pterm.Yellow("RELAY: "+reason))
		body.WriteString("\nFunds reached the vault; the proof above is the vault transfer.")
	}

	_, err = fmt.Fprintln(w, pterm.DefaultBox.WithTitle(title).WithTitleTopCenter().Sprint(body.String()))
	return err
}

// printable drops control characters so relay-supplied text cannot carry
// terminal escape sequences.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
