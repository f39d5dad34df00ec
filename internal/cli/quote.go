package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/fee"
	"github.com/mrz1836/deaddrop/internal/output"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// quoteCmd previews the fee for an amount.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var quoteCmd = &cobra.Command{
	Use:   "quote <amount>",
	Short: "Preview the fee for an amount",
	Long: `Show what a dead drop of the given amount costs: the service fee, the
vault leg and the total debited from the wallet including the network reserve.
Nothing is signed or sent.`,
	Example: `  deaddrop quote 1.5
  deaddrop quote 0.25 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	if _, err := chain.ParseAmount(args[0]); err != nil {
		return droperr.WithCause(droperr.ErrInvalidInput, err)
	}

	calc := fee.Calculator{
		Percent:        cc.Config.Fees.ServicePercent,
		NetworkReserve: cc.Config.Fees.NetworkReserve,
	}
	return output.RenderQuote(cmd.OutOrStdout(), calc.Quote(args[0]), calc.Percent, cc.Formatter.Format())
}
