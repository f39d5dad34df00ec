package cli

import (
	"context"
	"errors"
	"os"

	"github.com/mrz1836/deaddrop/internal/config"
	"github.com/mrz1836/deaddrop/internal/wallet"
	"github.com/mrz1836/deaddrop/internal/wallet/keystore"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// walletConn is a connected keystore wallet and the session following it.
type walletConn struct {
	provider *keystore.Provider
	session  *wallet.Session
}

// Close locks the wallet and stops following its events.
func (c *walletConn) Close() {
	_ = c.provider.Disconnect()
	c.session.Close()
}

// Address returns the connected account.
func (c *walletConn) Address() string {
	return c.session.Snapshot().PublicAddress
}

// walletName returns the keystore selected by flag, falling back to config.
func walletName(cc *CommandContext, flag string) string {
	if flag != "" {
		return flag
	}
	return cc.Config.GetKeystore()
}

// connectWallet connects to keystore name. It first tries a silent connect,
// which succeeds for plain keystores or when the passphrase is in the
// environment, and prompts for the passphrase only when that fails.
func connectWallet(ctx context.Context, cc *CommandContext, name string) (*walletConn, error) {
	opts := keystore.ProviderOptions{
		Passphrase: os.Getenv(config.EnvPassword),
	}
	if isInteractiveFn() {
		opts.Prompt = passphrasePrompt
	}

	provider := keystore.NewProvider(cc.Store, name, opts)
	session, err := wallet.NewSession(provider.Events())
	if err != nil {
		return nil, err
	}
	conn := &walletConn{provider: provider, session: session}

	_, err = provider.Connect(ctx, wallet.ConnectOptions{OnlyIfTrusted: true})
	if err == nil {
		cc.log().Debug("wallet %s connected without prompt", name)
		return conn, nil
	}

	if errors.Is(err, droperr.ErrKeystoreNotFound) {
		session.Close()
		return nil, droperr.WithSuggestion(err, "import a keypair first: deaddrop wallet import "+name+" --keygen-file <path>")
	}
	if !errors.Is(err, droperr.ErrWalletUnavailable) || opts.Prompt == nil {
		session.Close()
		return nil, err
	}

	if _, err = provider.Connect(ctx, wallet.ConnectOptions{}); err != nil {
		session.Close()
		cc.log().Error("wallet %s connect failed: %v", name, err)
		return nil, err
	}

	cc.log().Debug("wallet %s unlocked", name)
	return conn, nil
}
