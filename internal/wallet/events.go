package wallet

import (
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
)

// EventKind identifies a wallet session change.
type EventKind string

// Wallet session events.
const (
	EventConnected      EventKind = "wallet:connected"
	EventDisconnected   EventKind = "wallet:disconnected"
	EventAccountChanged EventKind = "wallet:account_changed"
)

// Event describes a wallet session change. Address is empty on disconnect
// and on an account change to no account.
type Event struct {
	Kind    EventKind
	Address string
	At      time.Time
}

type subscription struct {
	id string
	fn func(Event)
}

// Bus delivers wallet events to subscribers synchronously, in publish order.
// Handlers must not publish or subscribe from inside a callback.
//
// The underlying bus holds one handler per kind; subscribers are tracked by
// id so that removing one never touches another with the same function.
type Bus struct {
	bus evbus.Bus

	mu   sync.RWMutex
	subs map[EventKind][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		bus:  evbus.New(),
		subs: make(map[EventKind][]subscription),
	}
}

// Publish delivers e to every subscriber of e.Kind.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b.bus.Publish(string(e.Kind), e)
}

// Subscribe registers fn for events of kind and returns a function that
// removes the subscription.
func (b *Bus) Subscribe(kind EventKind, fn func(Event)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.bus.HasCallback(string(kind)) {
		if err := b.bus.Subscribe(string(kind), b.fanOut(kind)); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	b.subs[kind] = append(b.subs[kind], subscription{id: id, fn: fn})

	return func() { b.remove(kind, id) }, nil
}

// HasSubscribers reports whether anyone listens for kind.
func (b *Bus) HasSubscribers(kind EventKind) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind]) > 0
}

func (b *Bus) fanOut(kind EventKind) func(Event) {
	return func(e Event) {
		b.mu.RLock()
		subs := make([]subscription, len(b.subs[kind]))
		copy(subs, b.subs[kind])
		b.mu.RUnlock()

		for _, s := range subs {
			s.fn(e)
		}
	}
}

func (b *Bus) remove(kind EventKind, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[kind]
	for i, s := range subs {
		if s.id == id {
			b.subs[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
