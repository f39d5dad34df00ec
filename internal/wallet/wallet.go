// Package wallet defines the wallet capability that authorizes transfers:
// connecting, signing, and the session state observed by the transfer flow.
package wallet

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// ConnectOptions controls how a provider connects.
type ConnectOptions struct {
	// OnlyIfTrusted connects silently or not at all: the provider must not
	// prompt the user.
	OnlyIfTrusted bool
}

// Provider is a wallet able to authorize transactions for one account.
type Provider interface {
	// Connect unlocks the wallet and returns its public address.
	Connect(ctx context.Context, opts ConnectOptions) (string, error)

	// Disconnect locks the wallet and wipes key material from memory.
	Disconnect() error

	// SignTransaction returns a signed copy of tx. tx itself is not modified.
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)

	// Events returns the bus the provider publishes session changes on.
	Events() *Bus
}

// SessionState is a read-only snapshot of the wallet session.
type SessionState struct {
	PublicAddress string `json:"public_address"`
	Connected     bool   `json:"connected"`
}

// Session tracks the wallet session from provider events.
type Session struct {
	mu    sync.RWMutex
	state SessionState
	bus   *Bus
	unsub []func()
}

// NewSession creates a session that follows events published on bus.
func NewSession(bus *Bus) (*Session, error) {
	s := &Session{bus: bus}

	for _, kind := range []EventKind{EventConnected, EventDisconnected, EventAccountChanged} {
		unsub, err := bus.Subscribe(kind, s.apply)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.unsub = append(s.unsub, unsub)
	}

	return s, nil
}

func (s *Session) apply(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case EventConnected, EventAccountChanged:
		// An account change to no account ends the session.
		if e.Address == "" {
			s.state = SessionState{}
			return
		}
		s.state = SessionState{PublicAddress: e.Address, Connected: true}
	case EventDisconnected:
		s.state = SessionState{}
	}
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Close stops following events.
func (s *Session) Close() {
	for _, unsub := range s.unsub {
		unsub()
	}
	s.unsub = nil
}
