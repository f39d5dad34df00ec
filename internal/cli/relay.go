package cli

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/output"
)

const relayStatusTimeout = 15 * time.Second

// relayCmd groups relay operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Inspect the relay service",
}

// relayStatusCmd checks the relay.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var relayStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check relay health and the vault it assigns",
	Long: `Query the relay's health endpoint and the vault address it currently
hands out. The vault address is validated the same way a transfer validates it.`,
	Example: `  deaddrop relay status
  deaddrop relay status -o json`,
	Args: cobra.NoArgs,
	RunE: runRelayStatus,
}

// RelayStatusResponse is the JSON form of relay status.
type RelayStatusResponse struct {
	URL        string `json:"url"`
	Enabled    bool   `json:"enabled"`
	Status     string `json:"status"`
	Vault      string `json:"vault,omitempty"`
	VaultError string `json:"vault_error,omitempty"`
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(relayCmd)
	relayCmd.AddCommand(relayStatusCmd)
}

func runRelayStatus(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	rel := cc.relay()

	ctx, cancel := contextWithTimeout(cmd, relayStatusTimeout)
	defer cancel()

	health, err := rel.Health(ctx)
	if err != nil {
		return err
	}

	resp := RelayStatusResponse{
		URL:     rel.BaseURL(),
		Enabled: cc.Config.IsRelayEnabled(),
		Status:  health.Status,
	}
	if vault, vaultErr := resolveRelayVault(ctx, rel); vaultErr != nil {
		resp.VaultError = vaultErr.Error()
	} else {
		resp.Vault = vault
	}

	w := cmd.OutOrStdout()
	if cc.Formatter.Format() == output.FormatJSON {
		return writeJSON(w, resp)
	}

	status := pterm.LightGreen(resp.Status)
	if !health.OK() {
		status = pterm.Red(resp.Status)
	}
	mode := "disabled (transfers go direct to the vault)"
	if resp.Enabled {
		mode = "enabled"
	}
	vault := resp.Vault
	if resp.VaultError != "" {
		vault = pterm.Red(resp.VaultError)
	}

	table, err := pterm.DefaultTable.WithData(pterm.TableData{
		{"URL", resp.URL},
		{"STATUS", status},
		{"MODE", mode},
		{"VAULT", vault},
	}).Srender()
	if err != nil {
		return err
	}
	outln(w, table)
	return nil
}

// resolveRelayVault asks the relay for its vault and rejects addresses that
// are not valid Solana public keys.
func resolveRelayVault(ctx context.Context, rel RelayService) (string, error) {
	vault, err := rel.ResolveVault(ctx)
	if err != nil {
		return "", err
	}
	pk, err := chain.ValidateAddress(vault)
	if err != nil {
		return "", err
	}
	return pk.String(), nil
}
