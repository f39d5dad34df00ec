package chain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/chain"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

const (
	testVault     = "JChojPahR9scTF63ETisQ6YGTuhkq5B1Ud9w1XkanyRT"
	systemProgram = "11111111111111111111111111111111"
)

func TestValidateAddress_Valid(t *testing.T) {
	t.Parallel()

	for _, addr := range []string{testVault, systemProgram, "  " + testVault + "\n"} {
		pk, err := chain.ValidateAddress(addr)
		require.NoError(t, err, addr)
		assert.Equal(t, strings.TrimSpace(addr), pk.String())
	}
}

func TestValidateAddress_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too short", "abc"},
		{"31 characters", strings.Repeat("1", 31)},
		{"invalid base58 character", strings.Repeat("0", 44)},
		{"wrong decoded length", strings.Repeat("z", 60)},
		{"ethereum address", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := chain.ValidateAddress(tt.addr)
			require.Error(t, err)
			require.ErrorIs(t, err, droperr.ErrInvalidAddress)
			assert.True(t, droperr.IsInputError(err))
			assert.False(t, chain.IsValidAddress(tt.addr))
		})
	}
}

func TestMinAddressLength(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 32, chain.MinAddressLength)
	assert.True(t, chain.IsValidAddress(strings.Repeat("1", 32)))
}
