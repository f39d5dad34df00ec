package wallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// SolanaDerivationPath is the account path used by Solana wallets.
const SolanaDerivationPath = "m/44'/501'/0'/0'"

const hardenedOffset uint32 = 0x80000000

// KeyFromMnemonic derives the Solana keypair for path from a BIP39 phrase.
// An empty path uses SolanaDerivationPath.
func KeyFromMnemonic(mnemonic, passphrase, path string) (solana.PrivateKey, error) {
	seed, err := MnemonicToSeed(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer zero(seed)

	if path == "" {
		path = SolanaDerivationPath
	}
	return DeriveKey(seed, path)
}

// DeriveKey derives an ed25519 keypair from a BIP39 seed along a
// SLIP-0010 path. Every path segment must be hardened.
func DeriveKey(seed []byte, path string) (solana.PrivateKey, error) {
	key, chainCode, err := deriveSLIP10(seed, path)
	if err != nil {
		return nil, err
	}
	defer zero(key)
	defer zero(chainCode)

	return solana.PrivateKey(ed25519.NewKeyFromSeed(key)), nil
}

// deriveSLIP10 returns the private key and chain code at path.
func deriveSLIP10(seed []byte, path string) (key, chainCode []byte, err error) {
	indexes, err := parsePath(path)
	if err != nil {
		return nil, nil, err
	}

	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	_, _ = mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode = sum[:32], sum[32:]

	data := make([]byte, 37)
	defer zero(data)

	for _, index := range indexes {
		data[0] = 0x00
		copy(data[1:33], key)
		binary.BigEndian.PutUint32(data[33:], index)

		mac = hmac.New(sha512.New, chainCode)
		_, _ = mac.Write(data)
		next := mac.Sum(nil)

		zero(sum)
		sum = next
		key, chainCode = sum[:32], sum[32:]
	}

	out := make([]byte, 32)
	cc := make([]byte, 32)
	copy(out, key)
	copy(cc, chainCode)
	zero(sum)
	return out, cc, nil
}

func parsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, invalidPath(path, "must start with m")
	}

	indexes := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if !strings.HasSuffix(part, "'") && !strings.HasSuffix(part, "H") {
			return nil, invalidPath(path, "ed25519 supports hardened segments only")
		}
		n, err := strconv.ParseUint(part[:len(part)-1], 10, 31)
		if err != nil {
			return nil, invalidPath(path, fmt.Sprintf("bad segment %q", part))
		}
		indexes = append(indexes, uint32(n)+hardenedOffset)
	}

	return indexes, nil
}

func invalidPath(path, reason string) error {
	return droperr.WithDetails(droperr.ErrInvalidInput, map[string]string{
		"derivation_path": path,
		"reason":          reason,
	})
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
