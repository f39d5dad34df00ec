package cli

import (
	"context"

	"github.com/mrz1836/deaddrop/internal/config"
	"github.com/mrz1836/deaddrop/internal/orchestrator"
	"github.com/mrz1836/deaddrop/internal/output"
	"github.com/mrz1836/deaddrop/internal/relay"
)

// Compile-time interface checks.
var (
	_ ConfigProvider         = (*config.Config)(nil)
	_ LogWriter              = (*config.Logger)(nil)
	_ FormatProvider         = (*output.Formatter)(nil)
	_ RelayService           = (*relay.Client)(nil)
	_ orchestrator.LogWriter = (*config.Logger)(nil)
)

// ConfigProvider provides read access to configuration values.
// This interface enables mocking configuration in tests.
type ConfigProvider interface {
	// GetHome returns the deaddrop home directory path.
	GetHome() string

	// GetRPC returns the Solana RPC URL.
	GetRPC() string

	// GetCluster returns the cluster used in explorer links.
	GetCluster() string

	// GetExplorer returns the explorer base URL.
	GetExplorer() string

	// IsRelayEnabled reports whether transfers take the relay route.
	IsRelayEnabled() bool

	// GetRelayURL returns the relay service URL.
	GetRelayURL() string

	// GetVaultAddress returns the vault used when the relay is disabled.
	GetVaultAddress() string

	// GetKeystore returns the default keystore name.
	GetKeystore() string

	// GetLoggingLevel returns the configured logging level.
	GetLoggingLevel() string

	// GetLoggingFile returns the configured log file path.
	GetLoggingFile() string

	// GetOutputFormat returns the default output format.
	GetOutputFormat() string

	// IsVerbose returns true if verbose output is enabled.
	IsVerbose() bool
}

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// Close closes the logger and releases resources.
	Close() error
}

// FormatProvider provides output format information.
// This interface enables mocking output formatting in tests.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format
}

// RelayService is the relay API used by the CLI: the transfer gateway plus
// the health endpoint shown in status lines.
type RelayService interface {
	orchestrator.RelayGateway

	// Health reports whether the relay answers.
	Health(ctx context.Context) (relay.Health, error)

	// BaseURL returns the relay URL.
	BaseURL() string
}
