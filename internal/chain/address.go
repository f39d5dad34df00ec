package chain

import (
	"strings"

	"github.com/gagliardetto/solana-go"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// MinAddressLength is the shortest base58 string accepted as an address.
const MinAddressLength = 32

// ValidateAddress checks that address is a base58-encoded ed25519 public key
// and returns it decoded.
func ValidateAddress(address string) (solana.PublicKey, error) {
	address = strings.TrimSpace(address)

	if address == "" {
		return solana.PublicKey{}, droperr.WithSuggestion(
			droperr.ErrInvalidAddress,
			"provide a destination address",
		)
	}

	if len(address) < MinAddressLength {
		return solana.PublicKey{}, droperr.WithDetails(droperr.ErrInvalidAddress, map[string]string{
			"address": address,
			"reason":  "too short",
		})
	}

	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, droperr.WithDetails(
			droperr.WithCause(droperr.ErrInvalidAddress, err),
			map[string]string{"address": address},
		)
	}

	return pk, nil
}

// IsValidAddress reports whether address passes ValidateAddress.
func IsValidAddress(address string) bool {
	_, err := ValidateAddress(address)
	return err == nil
}
