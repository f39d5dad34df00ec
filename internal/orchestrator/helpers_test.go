package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/chain"
	"github.com/mrz1836/deaddrop/internal/displaystats"
	"github.com/mrz1836/deaddrop/internal/fee"
	"github.com/mrz1836/deaddrop/internal/narrator"
	"github.com/mrz1836/deaddrop/internal/orchestrator"
	"github.com/mrz1836/deaddrop/internal/relay"
	"github.com/mrz1836/deaddrop/internal/wallet"
)

const (
	testVault       = "JChojPahR9scTF63ETisQ6YGTuhkq5B1Ud9w1XkanyRT"
	testDestination = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	vaultSig        = "vault-leg-signature"
	relaySig        = "relay-leg-signature"
)

var (
	errRejected = errors.New("user rejected the request")
	errRPCDown  = errors.New("connection refused")
)

// callLog records the order of collaborator calls.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(name string) int {
	n := 0
	for _, c := range l.list() {
		if c == name {
			n++
		}
	}
	return n
}

type fakeAnchors struct {
	log  *callLog
	err  error
	next byte
	mu   sync.Mutex
}

func (f *fakeAnchors) LatestAnchor(context.Context) (chain.Anchor, error) {
	f.log.add("anchor")
	if f.err != nil {
		return chain.Anchor{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return chain.Anchor{Blockhash: solana.Hash{f.next}, LastValidBlockHeight: uint64(f.next)}, nil
}

type fakeBroadcaster struct {
	log     *callLog
	sig     string
	err     error
	release chan struct{}
	entered chan struct{}
	sent    []*solana.Transaction
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, tx *solana.Transaction) (string, error) {
	f.log.add("broadcast")
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, tx)
	return f.sig, nil
}

type fakeRelay struct {
	log        *callLog
	vault      string
	resolveErr error
	result     *relay.MixResult
	requests   []relay.MixRequest
}

func (f *fakeRelay) ResolveVault(context.Context) (string, error) {
	f.log.add("resolve")
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.vault, nil
}

func (f *fakeRelay) RequestMix(_ context.Context, req relay.MixRequest) *relay.MixResult {
	f.log.add("mix")
	f.requests = append(f.requests, req)
	return f.result
}

// stubWallet signs with key unless err is set.
type stubWallet struct {
	log *callLog
	key solana.PrivateKey
	err error
	bus *wallet.Bus
}

func (s *stubWallet) Connect(context.Context, wallet.ConnectOptions) (string, error) {
	return s.key.PublicKey().String(), nil
}

func (s *stubWallet) Disconnect() error { return nil }

func (s *stubWallet) Events() *wallet.Bus { return s.bus }

func (s *stubWallet) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	s.log.add("sign")
	if s.err != nil {
		return nil, s.err
	}
	signed := &solana.Transaction{Message: tx.Message}
	_, err := signed.Sign(func(solana.PublicKey) *solana.PrivateKey { return &s.key })
	return signed, err
}

// fakeSession returns states in order, repeating the last one.
type fakeSession struct {
	mu     sync.Mutex
	states []wallet.SessionState
}

func (f *fakeSession) Snapshot() wallet.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.states[0]
	if len(f.states) > 1 {
		f.states = f.states[1:]
	}
	return s
}

type fixedSource struct{}

func (fixedSource) IntN(int) int     { return 1000 }
func (fixedSource) Float64() float64 { return 0.5 }

// harness wires an orchestrator to fakes.
type harness struct {
	log         *callLog
	anchors     *fakeAnchors
	broadcaster *fakeBroadcaster
	relay       *fakeRelay
	wallet      *stubWallet
	session     *fakeSession
	recorder    *narrator.Recorder
	cfg         *orchestrator.Config
}

func newHarness(t *testing.T, relayEnabled bool) *harness {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	log := &callLog{}
	h := &harness{
		log:         log,
		anchors:     &fakeAnchors{log: log},
		broadcaster: &fakeBroadcaster{log: log, sig: vaultSig},
		relay: &fakeRelay{
			log:   log,
			vault: testVault,
			result: &relay.MixResult{
				Success:      true,
				TxHash:       relaySig,
				ExplorerLink: "https://explorer.solana.com/tx/" + relaySig + "?cluster=devnet",
			},
		},
		wallet:   &stubWallet{log: log, key: key, bus: wallet.NewBus()},
		session:  &fakeSession{states: []wallet.SessionState{{PublicAddress: key.PublicKey().String(), Connected: true}}},
		recorder: &narrator.Recorder{},
	}

	h.cfg = &orchestrator.Config{
		Builder:      chain.NewBuilder(h.anchors),
		Broadcaster:  h.broadcaster,
		Wallet:       h.wallet,
		Session:      h.session,
		Fees:         fee.NewCalculator(),
		Relay:        h.relay,
		RelayEnabled: relayEnabled,
		Vault:        testVault,
		Narrator:     narrator.New(0),
		Stats:        displaystats.NewWithSource(fixedSource{}),
		Explorer:     "https://explorer.solana.com",
		Cluster:      "devnet",
	}
	return h
}

func (h *harness) orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(h.cfg)
}

func (h *harness) sender() string {
	return h.wallet.key.PublicKey().String()
}

func (h *harness) transfer(amount float64) *orchestrator.Outcome {
	return h.orchestrator().Transfer(context.Background(), orchestrator.TransferRequest{
		Destination: testDestination,
		Amount:      amount,
	}, h.recorder)
}
