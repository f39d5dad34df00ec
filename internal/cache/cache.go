// Package cache keeps the last balance read for each wallet address so the
// CLI can show something useful when the RPC endpoint is unreachable.
package cache

import (
	"sync"
	"time"
)

// DefaultStaleness is how old an entry may be before it is shown as stale.
const DefaultStaleness = 5 * time.Minute

// BalanceCache stores the last known balance per cluster and address.
type BalanceCache struct {
	mu      sync.RWMutex     `json:"-"`
	Entries map[string]Entry `json:"entries"`
}

// Entry is one cached balance.
type Entry struct {
	Cluster   string    `json:"cluster"`
	Address   string    `json:"address"`
	Lamports  uint64    `json:"lamports"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Age returns how long ago the entry was recorded.
func (e Entry) Age() time.Duration {
	return time.Since(e.UpdatedAt)
}

// NewBalanceCache creates an empty cache.
func NewBalanceCache() *BalanceCache {
	return &BalanceCache{Entries: make(map[string]Entry)}
}

// Key returns the map key for an address on a cluster.
func Key(cluster, address string) string {
	return cluster + ":" + address
}

// Get returns the cached entry for address on cluster.
func (c *BalanceCache) Get(cluster, address string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.Entries[Key(cluster, address)]
	return entry, ok
}

// Set records a fresh balance.
func (c *BalanceCache) Set(cluster, address string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries[Key(cluster, address)] = Entry{
		Cluster:   cluster,
		Address:   address,
		Lamports:  lamports,
		UpdatedAt: time.Now(),
	}
}

// IsStale reports whether the entry is missing or older than staleness.
func (c *BalanceCache) IsStale(cluster, address string, staleness time.Duration) bool {
	entry, ok := c.Get(cluster, address)
	return !ok || entry.Age() > staleness
}

// Size returns the number of entries.
func (c *BalanceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Entries)
}

// Prune removes entries older than maxAge and returns how many it removed.
func (c *BalanceCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for key, entry := range c.Entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(c.Entries, key)
			removed++
		}
	}
	return removed
}
