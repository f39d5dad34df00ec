package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/fee"
	"github.com/mrz1836/deaddrop/internal/narrator"
	"github.com/mrz1836/deaddrop/internal/orchestrator"
	"github.com/mrz1836/deaddrop/internal/output"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// statusTimeout bounds the best-effort balance and relay lookups shown
// before the form.
const statusTimeout = 5 * time.Second

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// sendTo is the destination address.
	sendTo string
	// sendAmount is the amount in SOL.
	sendAmount string
	// sendWallet is the keystore to sign with.
	sendWallet string
	// sendYes skips the confirmation prompt.
	sendYes bool
	// sendRelay forces the relay route.
	sendRelay bool
	// sendDirect forces the direct vault route.
	sendDirect bool
)

// sendCmd runs a dead drop.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send SOL as a dead drop",
	Long: `Send SOL to a destination address through the vault.

The amount plus the service fee is signed and broadcast to the vault in one
transaction. Nothing waits for confirmation: the transaction signature is the
proof and is shown with an explorer link. When the relay is enabled it is then
asked to deliver the amount to the destination. If the relay fails the drop
still completes at the vault and the vault signature is the proof.

Missing --to or --amount are asked for interactively.

Examples:
  # Send 1.5 SOL with the default keystore
  deaddrop send --to 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM --amount 1.5

  # Send through the relay without confirming
  deaddrop send --to 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM --amount 0.2 --relay --yes

  # Interactive form
  deaddrop send`,
	RunE: runSend,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendTo, "to", "", "destination address")
	sendCmd.Flags().StringVar(&sendAmount, "amount", "", "amount to send in SOL")
	sendCmd.Flags().StringVar(&sendWallet, "wallet", "", "keystore name (default from config)")
	sendCmd.Flags().BoolVar(&sendYes, "yes", false, "skip confirmation prompt")
	sendCmd.Flags().BoolVar(&sendRelay, "relay", false, "deliver through the relay")
	sendCmd.Flags().BoolVar(&sendDirect, "direct", false, "send to the vault only, without the relay")
	sendCmd.MarkFlagsMutuallyExclusive("relay", "direct")
}

func runSend(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	relayEnabled := resolveRelayMode(cc.Config.IsRelayEnabled(), sendRelay, sendDirect)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := connectWallet(ctx, cc, walletName(cc, sendWallet))
	if err != nil {
		return err
	}
	defer conn.Close()

	// An interrupt locks the wallet at once; an attempt that has not signed
	// yet fails instead of signing.
	context.AfterFunc(ctx, func() { _ = conn.provider.Disconnect() })

	orch := newOrchestrator(cc, conn, relayEnabled)
	interactive := isInteractiveFn() && !cc.Formatter.IsJSON()

	if !cc.Formatter.IsJSON() {
		printSessionStatus(ctx, w, cc, conn.Address(), relayEnabled)
	}

	to, amount := sendTo, sendAmount
	for {
		outcome, err := sendOnce(ctx, cmd, cc, orch, conn.Address(), to, amount, interactive)
		if err != nil {
			return err
		}
		if outcome == nil {
			return nil
		}

		if err := output.RenderOutcome(w, outcome, cc.Config.Fees.ServicePercent, cc.Formatter.Format()); err != nil {
			return err
		}
		if !cc.Formatter.IsJSON() {
			output.RenderLinkQR(w, outcome.ExplorerLink)
		}

		if !interactive || ctx.Err() != nil || !promptConfirmFn("INITIATE NEW DROP?") {
			if outcome.Err != nil {
				return &reportedError{err: outcome.Err}
			}
			return nil
		}

		// A new drop starts from an empty form.
		to, amount = "", ""
	}
}

// sendOnce fills the form, previews the quote, confirms and runs one attempt.
// A nil outcome with a nil error means the user canceled.
func sendOnce(
	ctx context.Context,
	cmd *cobra.Command,
	cc *CommandContext,
	orch *orchestrator.Orchestrator,
	sender, to, amount string,
	interactive bool,
) (*orchestrator.Outcome, error) {
	w := cmd.OutOrStdout()

	req, err := readTransferForm(to, amount, interactive)
	if err != nil {
		return nil, err
	}
	req, err = orchestrator.ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	amountText := strconv.FormatFloat(req.Amount, 'f', -1, 64)
	quote := orch.Quote(amountText)
	if !cc.Formatter.IsJSON() {
		outln(w)
		if err := output.RenderQuote(w, quote, cc.Config.Fees.ServicePercent, output.FormatText); err != nil {
			return nil, err
		}
	}

	if err := checkFunds(ctx, cmd, cc, sender, quote); err != nil {
		return nil, err
	}

	if !sendYes {
		question := fmt.Sprintf("Send %s SOL to %s?", amountText, req.Destination)
		if !promptConfirmFn(question) {
			outln(cmd.ErrOrStderr(), "Dead drop canceled.")
			return nil, nil //nolint:nilnil // canceled by the user
		}
	}

	cc.log().Debug("send: destination=%s amount=%s relay=%t", req.Destination, amountText, orch.RelayEnabled())
	return orch.Transfer(ctx, req, narrationRenderer(cc, w)), nil
}

// readTransferForm asks for whatever the flags did not provide.
func readTransferForm(to, amount string, interactive bool) (orchestrator.TransferRequest, error) {
	var err error

	if to == "" {
		if !interactive {
			return orchestrator.TransferRequest{}, droperr.WithSuggestion(droperr.ErrInvalidInput, "pass --to with the destination address")
		}
		if to, err = promptLineFn("Destination address: "); err != nil {
			return orchestrator.TransferRequest{}, err
		}
	}

	if amount == "" {
		if !interactive {
			return orchestrator.TransferRequest{}, droperr.WithSuggestion(droperr.ErrInvalidInput, "pass --amount with the amount in SOL")
		}
		if amount, err = promptLineFn("Amount (SOL): "); err != nil {
			return orchestrator.TransferRequest{}, err
		}
	}

	sol, err := chain.ParseAmount(amount)
	if err != nil {
		return orchestrator.TransferRequest{}, droperr.WithCause(droperr.ErrInvalidInput, err)
	}
	return orchestrator.TransferRequest{Destination: to, Amount: sol}, nil
}

// checkFunds refuses to start an attempt the balance cannot cover. A balance
// that cannot be read is reported and the attempt goes ahead.
func checkFunds(ctx context.Context, cmd *cobra.Command, cc *CommandContext, sender string, quote fee.Quote) error {
	if !cc.Config.Wallet.CheckBalance {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	balance, err := cc.network().GetBalance(ctx, sender)
	if err != nil {
		cc.log().Error("balance check failed: %v", err)
		output.WarnTo(cmd.ErrOrStderr(), "could not read the wallet balance; continuing without a balance check")
		return nil
	}

	required := chain.ToLamports(quote.TotalDebit)
	if balance < required {
		return droperr.WithDetails(droperr.ErrInsufficientFunds, map[string]string{
			"required":  chain.FormatLamports(required) + " SOL",
			"available": chain.FormatLamports(balance) + " SOL",
		})
	}
	return nil
}

// resolveRelayMode applies the --relay and --direct overrides.
func resolveRelayMode(configured, forceRelay, forceDirect bool) bool {
	switch {
	case forceRelay:
		return true
	case forceDirect:
		return false
	default:
		return configured
	}
}

// newOrchestrator wires the attempt pipeline to the configured network,
// relay and the connected wallet.
func newOrchestrator(cc *CommandContext, conn *walletConn, relayEnabled bool) *orchestrator.Orchestrator {
	network := cc.network()

	var nar *narrator.Narrator
	if cc.Config.Narration.Enabled && !cc.Formatter.IsJSON() {
		nar = narrator.New(cc.Config.Narration.Speed)
	}

	ocfg := &orchestrator.Config{
		Builder:     chain.NewBuilder(network),
		Broadcaster: network,
		Wallet:      conn.provider,
		Session:     conn.session,
		Fees: fee.Calculator{
			Percent:        cc.Config.Fees.ServicePercent,
			NetworkReserve: cc.Config.Fees.NetworkReserve,
		},
		RelayEnabled: relayEnabled,
		Vault:        cc.Config.GetVaultAddress(),
		Narrator:     nar,
		Explorer:     cc.Config.GetExplorer(),
		Cluster:      cc.Config.GetCluster(),
		Logger:       cc.log(),
	}
	if relayEnabled {
		ocfg.Relay = cc.relay()
	}

	return orchestrator.New(ocfg)
}

func narrationRenderer(cc *CommandContext, w io.Writer) narrator.Renderer {
	if cc.Formatter.IsJSON() {
		return narrator.Discard{}
	}
	return narrator.NewBarRenderer(w, cc.Formatter.Color())
}

// printSessionStatus writes the wallet line, its balance and the relay
// indicator. Lookups that fail are shown as unavailable.
func printSessionStatus(ctx context.Context, w io.Writer, cc *CommandContext, address string, relayEnabled bool) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	balance := pterm.Gray("unavailable")
	if reading, err := lookupBalance(ctx, cc, address); err == nil {
		balance = chain.FormatSOL(reading.Lamports, 4) + " SOL"
		if reading.Cached {
			balance += pterm.Gray(" (cached " + staleAge(reading.Age()) + " ago)")
		}
	}

	out(w, "%s %s\n", pterm.Gray("WALLET "), address)
	out(w, "%s %s\n", pterm.Gray("BALANCE"), balance)
	out(w, "%s %s\n", pterm.Gray("RELAY  "), relayIndicator(ctx, cc, relayEnabled))
}

// relayIndicator checks relay health. Failures only change the indicator.
func relayIndicator(ctx context.Context, cc *CommandContext, relayEnabled bool) string {
	if !relayEnabled {
		return pterm.Gray("DISABLED (direct to vault)")
	}
	health, err := cc.relay().Health(ctx)
	if err != nil || !health.OK() {
		cc.log().Debug("relay health check: %v", err)
		return pterm.Red("OFFLINE")
	}
	return pterm.LightGreen("ONLINE")
}
