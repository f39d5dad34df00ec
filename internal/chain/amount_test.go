package chain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/chain"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

func TestToLamports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sol  float64
		want uint64
	}{
		{"one SOL", 1, 1_000_000_000},
		{"half SOL", 0.5, 500_000_000},
		{"fraction of a lamport truncates", 0.0000000015, 1},
		{"just under two lamports", 0.0000000019, 1},
		{"below one lamport", 0.0000000001, 0},
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"NaN", math.NaN(), 0},
		{"infinity", math.Inf(1), 0},
		{"huge saturates", 1e30, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, chain.ToLamports(tt.sol))
		})
	}
}

func TestToLamports_NeverRoundsUp(t *testing.T) {
	t.Parallel()
	for _, sol := range []float64{1.0035, 0.123456789, 2.9999999999, 10.00175} {
		lamports := chain.ToLamports(sol)
		assert.LessOrEqual(t, float64(lamports), sol*1e9, "sol=%v", sol)
		assert.Greater(t, float64(lamports)+1, sol*1e9, "sol=%v", sol)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	v, err := chain.ParseAmount(" 1.25 ")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, v, 1e-12)

	for _, in := range []string{"", "abc", "0", "-1", "NaN", "Inf", "1.2.3"} {
		_, err := chain.ParseAmount(in)
		require.Error(t, err, "input %q", in)
		require.ErrorIs(t, err, droperr.ErrInvalidAmount, "input %q", in)
		assert.True(t, droperr.IsInputError(err))
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()
	require.NoError(t, chain.ValidateAmount(0.001))
	require.ErrorIs(t, chain.ValidateAmount(0), droperr.ErrInvalidAmount)
	require.ErrorIs(t, chain.ValidateAmount(math.Inf(-1)), droperr.ErrInvalidAmount)
}

func TestFormatSOL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1.5000", chain.FormatSOL(1_500_000_000, 4))
	assert.Equal(t, "0.0000", chain.FormatSOL(0, 4))
	assert.Equal(t, "0.000005", chain.FormatSOL(5000, 6))
}

func TestFormatLamports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "0.0"},
		{1, "0.000000001"},
		{1_500_000_000, "1.5"},
		{1_000_000_000, "1.0"},
		{1_003_500_000, "1.0035"},
		{123_456_789_012, "123.456789012"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, chain.FormatLamports(tt.lamports))
		})
	}
}

func TestLamportsToSOL(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 2.5, chain.LamportsToSOL(2_500_000_000), 1e-12)
	assert.Equal(t, uint64(1_000_000_000), chain.LamportsPerSOL)
}
