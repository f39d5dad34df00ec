package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/deaddrop/internal/chain"
)

func TestExplorerTxURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		cluster string
		sig     string
		want    string
	}{
		{"devnet", "https://explorer.solana.com", "devnet", "abc", "https://explorer.solana.com/tx/abc?cluster=devnet"},
		{"trailing slash", "https://explorer.solana.com/", "testnet", "abc", "https://explorer.solana.com/tx/abc?cluster=testnet"},
		{"mainnet has no cluster", "https://explorer.solana.com", chain.ClusterMainnet, "abc", "https://explorer.solana.com/tx/abc"},
		{"empty cluster", "https://explorer.solana.com", "", "abc", "https://explorer.solana.com/tx/abc"},
		{"empty signature", "https://explorer.solana.com", "devnet", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, chain.ExplorerTxURL(tt.base, tt.cluster, tt.sig))
		})
	}
}
