package chain

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// Decimals is the number of decimal places of one SOL.
const Decimals = 9

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = solana.LAMPORTS_PER_SOL

// ToLamports converts a SOL amount to lamports, rounding down.
// Negative, NaN and infinite amounts convert to zero; amounts beyond the
// uint64 range saturate.
func ToLamports(sol float64) uint64 {
	if math.IsNaN(sol) || math.IsInf(sol, 0) || sol <= 0 {
		return 0
	}
	v := math.Floor(sol * float64(LamportsPerSOL))
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(LamportsPerSOL)
}

// ParseAmount parses a user-entered SOL amount. The amount must be a finite
// number greater than zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, droperr.WithSuggestion(droperr.ErrInvalidAmount, "enter an amount in SOL, e.g. 0.5")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, droperr.WithDetails(droperr.ErrInvalidAmount, map[string]string{"amount": s})
	}

	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateAmount checks that a SOL amount is positive and finite.
func ValidateAmount(sol float64) error {
	if math.IsNaN(sol) || math.IsInf(sol, 0) || sol <= 0 {
		return droperr.WithDetails(droperr.ErrInvalidAmount, map[string]string{
			"amount": strconv.FormatFloat(sol, 'g', -1, 64),
			"reason": "must be a positive number",
		})
	}
	return nil
}

// FormatSOL formats a lamport amount as SOL with a fixed number of decimals.
func FormatSOL(lamports uint64, places int) string {
	return strconv.FormatFloat(LamportsToSOL(lamports), 'f', places, 64)
}

// FormatLamports formats a lamport amount as SOL without losing precision.
// Trailing zeros after the decimal point are removed.
// For example, 1500000000 returns "1.5".
func FormatLamports(lamports uint64) string {
	str := new(big.Int).SetUint64(lamports).String()

	// Pad with leading zeros if necessary
	for len(str) <= Decimals {
		str = "0" + str
	}

	decimalPos := len(str) - Decimals
	result := str[:decimalPos] + "." + str[decimalPos:]

	// Remove unnecessary trailing zeros
	for len(result) > 1 && result[len(result)-1] == '0' && result[len(result)-2] != '.' {
		result = result[:len(result)-1]
	}

	return result
}
