package cli

import (
	"io"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/keycrypto"
	"github.com/mrz1836/deaddrop/internal/output"
	"github.com/mrz1836/deaddrop/internal/wallet"
	"github.com/mrz1836/deaddrop/internal/wallet/keystore"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// importKeygenFile is a solana-keygen JSON keypair to import.
	importKeygenFile string
	// importBase58 reads a base58 secret key from a hidden prompt.
	importBase58 bool
	// importMnemonic reads a BIP39 phrase from the prompt.
	importMnemonic bool
	// importGenerate creates a new random keypair.
	importGenerate bool
	// importPath is the derivation path used with --mnemonic.
	importPath string
	// importEncrypt seals the keystore with a passphrase.
	importEncrypt bool
)

// walletCmd is the parent command for keystore operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keystores",
	Long: `Import, inspect and list the local keypairs deaddrop signs with.

Keystores live in <home>/keystores as solana-keygen compatible JSON. A keystore
sealed with a passphrase is unlocked when a drop is sent, either from the
DEADDROP_KEYSTORE_PASSWORD environment variable or by prompting.`,
}

// walletImportCmd imports or creates a keypair.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import or generate a keypair",
	Long: `Store a keypair under a name. Exactly one source is required:

  --keygen-file   a solana-keygen JSON file (array of 64 bytes)
  --base58        a base58 secret key, read from a hidden prompt
  --mnemonic      a BIP39 phrase, derived at m/44'/501'/0'/0' by default
  --generate      a new random keypair

Use --encrypt to seal the keystore with a passphrase.`,
	Example: `  deaddrop wallet import main --keygen-file ~/.config/solana/id.json
  deaddrop wallet import phantom --mnemonic --encrypt
  deaddrop wallet import burner --generate`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletImport,
}

// walletShowCmd shows one keystore.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a keystore's address",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWalletShow,
}

// walletListCmd lists keystores.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keystores",
	Args:  cobra.NoArgs,
	RunE:  runWalletList,
}

// WalletView is the JSON form of a keystore.
type WalletView struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Encrypted bool   `json:"encrypted"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

func newWalletView(info *keystore.Info) WalletView {
	return WalletView{
		Name:      info.Name,
		Address:   info.PublicKey,
		Encrypted: info.Encrypted,
		Source:    info.Source,
		CreatedAt: info.CreatedAt.Format(time.RFC3339),
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletImportCmd, walletShowCmd, walletListCmd)

	walletImportCmd.Flags().StringVar(&importKeygenFile, "keygen-file", "", "solana-keygen JSON keypair file")
	walletImportCmd.Flags().BoolVar(&importBase58, "base58", false, "read a base58 secret key")
	walletImportCmd.Flags().BoolVar(&importMnemonic, "mnemonic", false, "read a BIP39 mnemonic phrase")
	walletImportCmd.Flags().BoolVar(&importGenerate, "generate", false, "generate a new keypair")
	walletImportCmd.Flags().StringVar(&importPath, "path", wallet.SolanaDerivationPath, "derivation path for --mnemonic")
	walletImportCmd.Flags().BoolVar(&importEncrypt, "encrypt", false, "seal the keystore with a passphrase")
	walletImportCmd.MarkFlagsMutuallyExclusive("keygen-file", "base58", "mnemonic", "generate")
	walletImportCmd.MarkFlagsOneRequired("keygen-file", "base58", "mnemonic", "generate")
}

func runWalletImport(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	name := args[0]

	if err := keystore.ValidateName(name); err != nil {
		return err
	}
	if cc.Store.Exists(name) {
		return droperr.WithSuggestion(
			droperr.WithDetails(droperr.ErrKeystoreExists, map[string]string{"name": name}),
			"choose another name; existing keystores are never overwritten",
		)
	}

	key, source, err := readImportKey()
	if err != nil {
		return err
	}
	defer keycrypto.Zero(key)

	opts := keystore.SaveOptions{Source: source}
	if importEncrypt {
		passphrase, pwErr := promptNewPasswordFn()
		if pwErr != nil {
			return pwErr
		}
		opts.Passphrase = string(passphrase)
		keycrypto.Zero(passphrase)
	}

	info, err := cc.Store.Save(name, key, opts)
	if err != nil {
		return err
	}
	cc.log().Debug("keystore %s imported from %s", name, source)

	w := cmd.OutOrStdout()
	return renderResult(w, cc.Formatter.Format(), newWalletView(info), func() error {
		output.SuccessTo(w, "Keystore "+name+" saved")
		writeWalletDetails(w, info)
		if source == keystore.SourceGenerate {
			output.WarnTo(w, "This keypair exists only in "+cc.Store.Dir()+". Back up the keystore file.")
		}
		return nil
	})
}

// readImportKey reads the keypair from the selected source.
func readImportKey() (solana.PrivateKey, string, error) {
	switch {
	case importKeygenFile != "":
		key, err := keystore.ReadKeygenFile(expandHome(importKeygenFile))
		return key, keystore.SourceKeygen, err

	case importBase58:
		secret, err := promptPasswordFn("Secret key (base58): ")
		if err != nil {
			return nil, "", err
		}
		defer keycrypto.Zero(secret)
		key, err := keystore.ParseBase58Secret(string(secret))
		return key, keystore.SourceBase58, err

	case importMnemonic:
		phrase, err := promptLineFn("Mnemonic phrase: ")
		if err != nil {
			return nil, "", err
		}
		phrase = wallet.NormalizeMnemonicInput(phrase)
		if err := wallet.ValidateMnemonic(phrase); err != nil {
			return nil, "", err
		}
		key, err := keystore.FromMnemonic(phrase, "", importPath)
		return key, keystore.SourceMnemonic, err

	case importGenerate:
		key, err := keystore.Generate()
		return key, keystore.SourceGenerate, err
	}

	return nil, "", droperr.WithSuggestion(
		droperr.ErrInvalidInput,
		"choose a source: --keygen-file, --base58, --mnemonic or --generate",
	)
}

func runWalletShow(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	name := cc.Config.GetKeystore()
	if len(args) == 1 {
		name = args[0]
	}

	info, err := cc.Store.Info(name)
	if err != nil {
		return droperr.WithSuggestion(err, "list keystores with: deaddrop wallet list")
	}

	w := cmd.OutOrStdout()
	return renderResult(w, cc.Formatter.Format(), newWalletView(info), func() error {
		writeWalletDetails(w, info)
		output.RenderLinkQR(w, info.PublicKey)
		return nil
	})
}

func runWalletList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	infos, err := cc.Store.List()
	if err != nil {
		return err
	}

	views := make([]WalletView, 0, len(infos))
	for _, info := range infos {
		views = append(views, newWalletView(info))
	}

	w := cmd.OutOrStdout()
	return renderResult(w, cc.Formatter.Format(), views, func() error {
		if len(views) == 0 {
			outln(w, "No keystores found.")
			outln(w, "Import one with: deaddrop wallet import <name> --keygen-file <path>")
			return nil
		}

		data := pterm.TableData{{"NAME", "ADDRESS", "SEALED", "SOURCE"}}
		for _, v := range views {
			name := v.Name
			if v.Name == cc.Config.GetKeystore() {
				name += " *"
			}
			data = append(data, []string{name, v.Address, yesNo(v.Encrypted), v.Source})
		}
		table, tableErr := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if tableErr != nil {
			return tableErr
		}
		outln(w, table)
		return nil
	})
}

func writeWalletDetails(w io.Writer, info *keystore.Info) {
	out(w, "%s %s\n", pterm.Gray("NAME   "), info.Name)
	out(w, "%s %s\n", pterm.Gray("ADDRESS"), info.PublicKey)
	out(w, "%s %s\n", pterm.Gray("SEALED "), yesNo(info.Encrypted))
	out(w, "%s %s\n", pterm.Gray("SOURCE "), info.Source)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
