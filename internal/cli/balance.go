package cli

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/output"
)

// balanceTimeout bounds a balance lookup including retries.
const balanceTimeout = 30 * time.Second

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// balanceWallet is the keystore whose address is looked up.
	balanceWallet string
)

// balanceCmd shows the SOL balance of a keystore or address.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show a SOL balance",
	Long: `Show the SOL balance of an address, or of the keystore selected with
--wallet (the configured default when neither is given). Reading a keystore's
address does not need its passphrase.`,
	Example: `  deaddrop balance
  deaddrop balance --wallet main
  deaddrop balance 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalance,
}

// BalanceResponse is the JSON form of a balance.
type BalanceResponse struct {
	Address   string `json:"address"`
	Lamports  uint64 `json:"lamports"`
	SOL       string `json:"sol"`
	Cluster   string `json:"cluster"`
	Cached    bool   `json:"cached,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVar(&balanceWallet, "wallet", "", "keystore name (default from config)")
}

func runBalance(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	address := ""
	if len(args) == 1 {
		address = args[0]
	} else {
		info, err := cc.Store.Info(walletName(cc, balanceWallet))
		if err != nil {
			return err
		}
		address = info.PublicKey
	}

	if _, err := chain.ValidateAddress(address); err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, balanceTimeout)
	defer cancel()

	reading, err := lookupBalance(ctx, cc, address)
	if err != nil {
		return err
	}

	resp := BalanceResponse{
		Address:  address,
		Lamports: reading.Lamports,
		SOL:      chain.FormatSOL(reading.Lamports, 4),
		Cluster:  cc.Config.GetCluster(),
		Cached:   reading.Cached,
	}
	if reading.Cached {
		resp.UpdatedAt = reading.UpdatedAt.UTC().Format(time.RFC3339)
	}

	w := cmd.OutOrStdout()
	return renderResult(w, cc.Formatter.Format(), resp, func() error {
		out(w, "%s %s\n", pterm.Gray("ADDRESS"), resp.Address)
		out(w, "%s %s SOL (%s)\n", pterm.Gray("BALANCE"), pterm.Bold.Sprint(resp.SOL), resp.Cluster)
		if reading.Cached {
			output.WarnTo(w, "network unavailable; showing the balance cached "+staleAge(reading.Age())+" ago")
		}
		return nil
	})
}

// staleAge renders a cache age rounded for display.
func staleAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return d.Round(time.Second).String()
	case d < time.Hour:
		return d.Round(time.Minute).String()
	default:
		return d.Round(time.Hour).String()
	}
}
