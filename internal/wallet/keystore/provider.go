package keystore

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/mrz1836/deaddrop/internal/keycrypto"
	"github.com/mrz1836/deaddrop/internal/wallet"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// PassphraseFunc asks the user for the passphrase of keystore name.
type PassphraseFunc func(name string) (string, error)

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	// Passphrase unlocks sealed keystores without prompting. A keystore that
	// can be opened without a prompt is trusted.
	Passphrase string

	// Prompt is called when a sealed keystore must be unlocked interactively.
	Prompt PassphraseFunc

	// Bus receives session events. Nil creates a private bus.
	Bus *wallet.Bus
}

// Provider is a wallet.Provider backed by a keystore file.
type Provider struct {
	store      *Store
	passphrase string
	prompt     PassphraseFunc
	bus        *wallet.Bus

	mu        sync.Mutex
	name      string
	key       *keycrypto.SecureBytes
	pub       solana.PublicKey
	connected bool
}

var _ wallet.Provider = (*Provider)(nil)

// NewProvider returns a disconnected provider for keystore name.
func NewProvider(store *Store, name string, opts ProviderOptions) *Provider {
	bus := opts.Bus
	if bus == nil {
		bus = wallet.NewBus()
	}
	return &Provider{
		store:      store,
		name:       name,
		passphrase: opts.Passphrase,
		prompt:     opts.Prompt,
		bus:        bus,
	}
}

// Events returns the provider's event bus.
func (p *Provider) Events() *wallet.Bus {
	return p.bus
}

// Connect unlocks the keystore. With OnlyIfTrusted a sealed keystore without
// a configured passphrase is not unlocked and ErrWalletUnavailable is returned.
func (p *Provider) Connect(ctx context.Context, opts wallet.ConnectOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	if p.connected {
		addr := p.pub.String()
		p.mu.Unlock()
		return addr, nil
	}
	name := p.name
	p.mu.Unlock()

	key, info, err := p.unlock(name, opts)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	if p.connected {
		// Lost a race with a concurrent Connect.
		addr := p.pub.String()
		p.mu.Unlock()
		key.Destroy()
		return addr, nil
	}
	p.key = key
	p.pub = solana.MustPublicKeyFromBase58(info.PublicKey)
	p.connected = true
	p.mu.Unlock()

	p.bus.Publish(wallet.Event{Kind: wallet.EventConnected, Address: info.PublicKey})
	return info.PublicKey, nil
}

// Switch connects to another keystore, replacing the current account.
func (p *Provider) Switch(ctx context.Context, name string, opts wallet.ConnectOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, info, err := p.unlock(name, opts)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	old := p.key
	wasConnected := p.connected
	p.name = name
	p.key = key
	p.pub = solana.MustPublicKeyFromBase58(info.PublicKey)
	p.connected = true
	p.mu.Unlock()

	if old != nil {
		old.Destroy()
	}

	kind := wallet.EventConnected
	if wasConnected {
		kind = wallet.EventAccountChanged
	}
	p.bus.Publish(wallet.Event{Kind: kind, Address: info.PublicKey})
	return info.PublicKey, nil
}

func (p *Provider) unlock(name string, opts wallet.ConnectOptions) (*keycrypto.SecureBytes, *Info, error) {
	info, err := p.store.Info(name)
	if err != nil {
		return nil, nil, droperr.WithCause(droperr.ErrWalletUnavailable, err)
	}

	passphrase := ""
	if info.Encrypted {
		passphrase = p.passphrase
		if passphrase == "" {
			if opts.OnlyIfTrusted || p.prompt == nil {
				return nil, nil, droperr.WithSuggestion(
					droperr.ErrWalletUnavailable,
					"keystore is encrypted - unlock it interactively or set DEADDROP_KEYSTORE_PASSWORD",
				)
			}
			passphrase, err = p.prompt(name)
			if err != nil {
				return nil, nil, droperr.WithCause(droperr.ErrWalletUnavailable, err)
			}
		}
	}

	key, info, err := p.store.Load(name, passphrase)
	if err != nil {
		return nil, nil, err
	}
	return key, info, nil
}

// Disconnect wipes the key from memory. Disconnecting twice is a no-op.
func (p *Provider) Disconnect() error {
	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()
		return nil
	}
	if p.key != nil {
		p.key.Destroy()
		p.key = nil
	}
	p.pub = solana.PublicKey{}
	p.connected = false
	p.mu.Unlock()

	p.bus.Publish(wallet.Event{Kind: wallet.EventDisconnected})
	return nil
}

// PublicKey returns the connected account, or the zero key.
func (p *Provider) PublicKey() solana.PublicKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pub
}

// SignTransaction signs a copy of tx as its fee payer.
func (p *Provider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, droperr.WithDetails(droperr.ErrSigningFailed, map[string]string{"reason": "no transaction"})
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected || p.key == nil {
		return nil, droperr.ErrWalletUnavailable
	}

	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(p.pub) {
		return nil, droperr.WithDetails(droperr.ErrSigningFailed, map[string]string{
			"reason": "fee payer is not the connected account",
		})
	}

	signed := &solana.Transaction{Message: tx.Message}
	err := p.key.Use(func(secret []byte) error {
		priv := solana.PrivateKey(secret)
		_, signErr := signed.Sign(func(k solana.PublicKey) *solana.PrivateKey {
			if k.Equals(p.pub) {
				return &priv
			}
			return nil
		})
		return signErr
	})
	if err != nil {
		return nil, err
	}

	return signed, nil
}
