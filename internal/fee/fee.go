// Package fee computes the service fee and total debit for a transfer.
package fee

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultPercent is the service fee as a percentage of the base amount.
	DefaultPercent = 0.35

	// DefaultNetworkReserve covers the network fee of the vault leg, in SOL.
	DefaultNetworkReserve = 0.000005
)

// Quote is the fee breakdown for one amount. All values are in SOL.
type Quote struct {
	BaseAmount  float64 `json:"base_amount"`
	ServiceFee  float64 `json:"service_fee"`
	VaultAmount float64 `json:"vault_amount"`
	TotalDebit  float64 `json:"total_debit"`
}

// Calculator derives quotes from a fixed fee schedule.
type Calculator struct {
	Percent        float64
	NetworkReserve float64
}

// NewCalculator returns a calculator with the default schedule.
func NewCalculator() Calculator {
	return Calculator{Percent: DefaultPercent, NetworkReserve: DefaultNetworkReserve}
}

// Quote parses amount as typed by the user. Text that is not a number,
// or a negative or non-finite number, quotes as 0.
func (c Calculator) Quote(amount string) Quote {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		v = 0
	}
	return c.QuoteAmount(v)
}

// QuoteAmount computes the breakdown for amount.
func (c Calculator) QuoteAmount(amount float64) Quote {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		amount = 0
	}

	serviceFee := amount * c.Percent / 100
	return Quote{
		BaseAmount:  amount,
		ServiceFee:  serviceFee,
		VaultAmount: amount + serviceFee,
		TotalDebit:  amount + serviceFee + c.NetworkReserve,
	}
}

// IsZero reports whether the quote is for no amount.
func (q Quote) IsZero() bool {
	return q.BaseAmount == 0
}
