package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/mrz1836/deaddrop/internal/cache"
)

const (
	cacheDirName     = "cache"
	balanceCacheFile = "balances.json"
)

// balanceReading is a balance and whether it came from the cache.
type balanceReading struct {
	Lamports  uint64
	Cached    bool
	UpdatedAt time.Time
}

// Age returns how old a cached reading is.
func (r balanceReading) Age() time.Duration {
	if !r.Cached {
		return 0
	}
	return time.Since(r.UpdatedAt)
}

// balanceStorage returns the on-disk balance cache.
func (c *CommandContext) balanceStorage() *cache.FileStorage {
	return cache.NewFileStorage(filepath.Join(c.Config.GetHome(), cacheDirName, balanceCacheFile))
}

// lookupBalance reads the balance of address from the network and records
// it. When the network read fails the last recorded balance is returned
// instead; the network error is returned only when nothing is cached.
func lookupBalance(ctx context.Context, cc *CommandContext, address string) (balanceReading, error) {
	storage := cc.balanceStorage()
	balances, loadErr := storage.Load()
	if loadErr != nil {
		cc.log().Debug("balance cache: %v", loadErr)
	}
	if balances == nil {
		balances = cache.NewBalanceCache()
	}
	cluster := cc.Config.GetCluster()

	lamports, err := cc.network().GetBalance(ctx, address)
	if err != nil {
		entry, ok := balances.Get(cluster, address)
		if !ok {
			return balanceReading{}, err
		}
		cc.log().Debug("balance of %s unavailable, using cached value from %s: %v", address, entry.UpdatedAt.Format(time.RFC3339), err)
		return balanceReading{Lamports: entry.Lamports, Cached: true, UpdatedAt: entry.UpdatedAt}, nil
	}

	balances.Set(cluster, address, lamports)
	if saveErr := storage.Save(balances); saveErr != nil {
		cc.log().Debug("balance cache: %v", saveErr)
	}
	return balanceReading{Lamports: lamports, UpdatedAt: time.Now()}, nil
}
