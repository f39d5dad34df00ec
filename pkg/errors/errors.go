// Package errors provides structured error handling for deaddrop.
// It defines the transfer error taxonomy, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input, rejected before any network call
	ExitWallet   = 3 // Wallet unavailable or signing refused
	ExitNetwork  = 4 // Network or relay unreachable before signing
	ExitRejected = 5 // Broadcast rejected or insufficient funds
)

// DropError is the structured error type for deaddrop.
type DropError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *DropError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DropError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for DropError.
func (e *DropError) Is(target error) bool {
	var t *DropError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Transfer taxonomy. Every failure of an attempt maps onto exactly one of these.
var (
	ErrGeneral = &DropError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &DropError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrWalletUnavailable = &DropError{
		Code:     "WALLET_UNAVAILABLE",
		Message:  "no wallet linked",
		ExitCode: ExitWallet,
	}

	ErrSigningFailed = &DropError{
		Code:     "SIGNING_FAILED",
		Message:  "transaction signing failed - no funds moved",
		ExitCode: ExitWallet,
	}

	ErrNetworkUnreachable = &DropError{
		Code:     "NETWORK_UNREACHABLE",
		Message:  "network unreachable - transfer aborted before signing",
		ExitCode: ExitNetwork,
	}

	ErrBroadcastFailed = &DropError{
		Code:     "BROADCAST_FAILED",
		Message:  "transaction rejected by network - no funds moved",
		ExitCode: ExitRejected,
	}

	ErrRelayFailed = &DropError{
		Code:     "RELAY_FAILED",
		Message:  "relay could not forward the transfer",
		ExitCode: ExitGeneral,
	}
)

// Input errors. These all satisfy errors.Is(err, ErrInvalidInput) through InputError.
var (
	ErrInvalidAddress = &DropError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &DropError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount",
		ExitCode: ExitInput,
	}

	ErrInsufficientFunds = &DropError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transfer",
		ExitCode: ExitRejected,
	}
)

// Operational errors.
var (
	ErrAttemptInProgress = &DropError{
		Code:     "ATTEMPT_IN_PROGRESS",
		Message:  "a transfer is already in progress",
		ExitCode: ExitGeneral,
	}

	ErrConfigInvalid = &DropError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration is invalid",
		ExitCode: ExitInput,
	}

	ErrKeystoreNotFound = &DropError{
		Code:     "KEYSTORE_NOT_FOUND",
		Message:  "keystore not found",
		ExitCode: ExitWallet,
	}

	ErrKeystoreExists = &DropError{
		Code:     "KEYSTORE_EXISTS",
		Message:  "keystore already exists",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &DropError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted keystore",
		ExitCode: ExitWallet,
	}

	ErrInvalidMnemonic = &DropError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrInvalidKey = &DropError{
		Code:     "INVALID_KEY",
		Message:  "invalid secret key",
		ExitCode: ExitInput,
	}
)

// New creates a new DropError with the given code and message.
func New(code, message string) *DropError {
	return &DropError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var de *DropError
	if errors.As(err, &de) {
		return &DropError{
			Code:       de.Code,
			Message:    msg,
			Details:    de.Details,
			Suggestion: de.Suggestion,
			Cause:      err,
			ExitCode:   de.ExitCode,
		}
	}

	return &DropError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a sentinel, keeping the sentinel's identity.
func WithCause(sentinel *DropError, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &DropError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var de *DropError
	if errors.As(err, &de) {
		return &DropError{
			Code:       de.Code,
			Message:    de.Message,
			Details:    details,
			Suggestion: de.Suggestion,
			Cause:      de.Cause,
			ExitCode:   de.ExitCode,
		}
	}

	return &DropError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var de *DropError
	if errors.As(err, &de) {
		return &DropError{
			Code:       de.Code,
			Message:    de.Message,
			Details:    de.Details,
			Suggestion: suggestion,
			Cause:      de.Cause,
			ExitCode:   de.ExitCode,
		}
	}

	return &DropError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// IsInputError reports whether err was rejected before any network or wallet call.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidAmount)
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var de *DropError
	if errors.As(err, &de) {
		return de.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var de *DropError
	if errors.As(err, &de) {
		return de.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
