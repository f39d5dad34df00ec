package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/mrz1836/deaddrop/internal/keycrypto"
	"github.com/mrz1836/deaddrop/internal/wallet"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// ReadKeygenFile reads a keypair written by solana-keygen.
func ReadKeygenFile(path string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user on purpose
	if err != nil {
		return nil, droperr.WithCause(droperr.ErrInvalidKey, err)
	}
	defer keycrypto.Zero(data)

	return ParseKeygenJSON(data)
}

// ParseKeygenJSON parses the solana-keygen format: a JSON array of the 64
// keypair bytes.
func ParseKeygenJSON(data []byte) (solana.PrivateKey, error) {
	var ints []int
	if err := json.Unmarshal(bytes.TrimSpace(data), &ints); err != nil {
		return nil, droperr.WithCause(droperr.ErrInvalidKey, err)
	}

	if len(ints) != ed25519.PrivateKeySize {
		return nil, droperr.WithDetails(droperr.ErrInvalidKey, map[string]string{
			"reason": "keypair must be 64 bytes",
		})
	}

	key := make(solana.PrivateKey, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			keycrypto.Zero(key)
			return nil, droperr.WithDetails(droperr.ErrInvalidKey, map[string]string{
				"reason": "keypair values must be bytes",
			})
		}
		key[i] = byte(v)
		ints[i] = 0
	}

	if err := validateKeypair(key); err != nil {
		keycrypto.Zero(key)
		return nil, err
	}
	return key, nil
}

// ParseBase58Secret accepts a base58 secret as exported by browser wallets:
// either the 64-byte keypair or the 32-byte seed.
func ParseBase58Secret(secret string) (solana.PrivateKey, error) {
	raw, err := base58.Decode(strings.TrimSpace(secret))
	if err != nil {
		return nil, droperr.WithCause(droperr.ErrInvalidKey, err)
	}
	defer keycrypto.Zero(raw)

	var key solana.PrivateKey
	switch len(raw) {
	case ed25519.SeedSize:
		key = solana.PrivateKey(ed25519.NewKeyFromSeed(raw))
	case ed25519.PrivateKeySize:
		key = make(solana.PrivateKey, len(raw))
		copy(key, raw)
	default:
		return nil, droperr.WithDetails(droperr.ErrInvalidKey, map[string]string{
			"reason": "base58 secret must decode to 32 or 64 bytes",
		})
	}

	if err := validateKeypair(key); err != nil {
		keycrypto.Zero(key)
		return nil, err
	}
	return key, nil
}

// FromMnemonic derives the keypair at path (empty for the default Solana
// account) from a BIP39 phrase.
func FromMnemonic(mnemonic, passphrase, path string) (solana.PrivateKey, error) {
	return wallet.KeyFromMnemonic(mnemonic, passphrase, path)
}

// Generate creates a new random keypair.
func Generate() (solana.PrivateKey, error) {
	return solana.NewRandomPrivateKey()
}

// validateKeypair checks that the public half matches the seed half.
func validateKeypair(key solana.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return droperr.WithDetails(droperr.ErrInvalidKey, map[string]string{
			"reason": "keypair must be 64 bytes",
		})
	}

	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	defer keycrypto.Zero(derived)

	if !bytes.Equal(derived[ed25519.SeedSize:], key[ed25519.SeedSize:]) {
		return droperr.WithDetails(droperr.ErrInvalidKey, map[string]string{
			"reason": "public key does not match secret",
		})
	}
	return nil
}

// encodeKeygen renders key in the solana-keygen JSON format.
func encodeKeygen(key solana.PrivateKey) ([]byte, error) {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	defer func() {
		for i := range ints {
			ints[i] = 0
		}
	}()
	return json.Marshal(ints)
}
