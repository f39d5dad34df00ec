// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters; a CLI
// process is too short-lived for a scrape endpoint, so snapshots are logged.
package metrics

import (
	"sync/atomic"
	"time"
)

// Attempt outcome labels accepted by RecordAttempt.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Relay metrics
	relayCallsTotal  atomic.Int64
	relayErrorsTotal atomic.Int64

	// Wallet operation metrics
	walletOpsTotal  atomic.Int64
	walletOpsErrors atomic.Int64

	// Attempt outcomes
	attemptsSuccess atomic.Int64
	attemptsPartial atomic.Int64
	attemptsFailure atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records an RPC call with its duration and success status.
func (m *Metrics) RecordRPCCall(duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}
}

// RecordRelayCall records a relay HTTP call.
func (m *Metrics) RecordRelayCall(err error) {
	m.relayCallsTotal.Add(1)
	if err != nil {
		m.relayErrorsTotal.Add(1)
	}
}

// RecordWalletOp records a wallet operation (connect, sign).
func (m *Metrics) RecordWalletOp(err error) {
	m.walletOpsTotal.Add(1)
	if err != nil {
		m.walletOpsErrors.Add(1)
	}
}

// RecordAttempt records the terminal state of a transfer attempt.
func (m *Metrics) RecordAttempt(outcome string) {
	switch outcome {
	case OutcomeSuccess:
		m.attemptsSuccess.Add(1)
	case OutcomePartial:
		m.attemptsPartial.Add(1)
	default:
		m.attemptsFailure.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal    int64 `json:"rpc_calls_total"`
	RPCErrorsTotal   int64 `json:"rpc_errors_total"`
	RPCLatencyNanos  int64 `json:"rpc_latency_nanos"`
	RelayCallsTotal  int64 `json:"relay_calls_total"`
	RelayErrorsTotal int64 `json:"relay_errors_total"`
	WalletOpsTotal   int64 `json:"wallet_ops_total"`
	WalletOpsErrors  int64 `json:"wallet_ops_errors"`
	AttemptsSuccess  int64 `json:"attempts_success"`
	AttemptsPartial  int64 `json:"attempts_partial"`
	AttemptsFailure  int64 `json:"attempts_failure"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:    m.rpcCallsTotal.Load(),
		RPCErrorsTotal:   m.rpcErrorsTotal.Load(),
		RPCLatencyNanos:  m.rpcLatencyNanos.Load(),
		RelayCallsTotal:  m.relayCallsTotal.Load(),
		RelayErrorsTotal: m.relayErrorsTotal.Load(),
		WalletOpsTotal:   m.walletOpsTotal.Load(),
		WalletOpsErrors:  m.walletOpsErrors.Load(),
		AttemptsSuccess:  m.attemptsSuccess.Load(),
		AttemptsPartial:  m.attemptsPartial.Load(),
		AttemptsFailure:  m.attemptsFailure.Load(),
	}
}

// RPCCallsTotal returns the total number of RPC calls made.
func (m *Metrics) RPCCallsTotal() int64 {
	return m.rpcCallsTotal.Load()
}

// RPCErrorsTotal returns the total number of RPC errors.
func (m *Metrics) RPCErrorsTotal() int64 {
	return m.rpcErrorsTotal.Load()
}

// RPCLatencyAvgMs returns the average RPC latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	nanos := m.rpcLatencyNanos.Load()
	return float64(nanos) / float64(calls) / 1e6
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.relayCallsTotal.Store(0)
	m.relayErrorsTotal.Store(0)
	m.walletOpsTotal.Store(0)
	m.walletOpsErrors.Store(0)
	m.attemptsSuccess.Store(0)
	m.attemptsPartial.Store(0)
	m.attemptsFailure.Store(0)
}
