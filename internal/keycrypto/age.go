// Package keycrypto seals keystore secrets with a passphrase and keeps
// decrypted key material in locked, zeroable memory.
package keycrypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// DefaultWorkFactor is the scrypt cost (log2 N) used for new keystores.
const DefaultWorkFactor = 18

var ageHeader = []byte("age-encryption.org/v1")

// Seal encrypts plaintext with passphrase and returns ASCII-armored output.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	return SealWithWorkFactor(plaintext, passphrase, DefaultWorkFactor)
}

// SealWithWorkFactor encrypts plaintext using an explicit scrypt work factor.
func SealWithWorkFactor(plaintext []byte, passphrase string, logN int) ([]byte, error) {
	if passphrase == "" {
		return nil, droperr.WithSuggestion(droperr.ErrInvalidInput, "a passphrase is required to encrypt the keystore")
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if logN > 0 {
		recipient.SetWorkFactor(logN)
	}

	buf := &bytes.Buffer{}
	aw := armor.NewWriter(buf)

	w, err := age.Encrypt(aw, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}

	return buf.Bytes(), nil
}

// Open decrypts armored or binary age ciphertext into locked memory.
// A wrong passphrase is reported as ErrDecryptionFailed.
func Open(ciphertext []byte, passphrase string) (*SecureBytes, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, droperr.WithCause(droperr.ErrDecryptionFailed, err)
	}

	var src io.Reader = bytes.NewReader(ciphertext)
	if bytes.HasPrefix(bytes.TrimSpace(ciphertext), []byte(armor.Header)) {
		src = armor.NewReader(bytes.NewReader(bytes.TrimSpace(ciphertext)))
	}

	r, err := age.Decrypt(src, identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, droperr.WithSuggestion(droperr.ErrDecryptionFailed, "check the keystore passphrase")
		}
		return nil, droperr.WithCause(droperr.ErrDecryptionFailed, err)
	}

	plaintext, err := io.ReadAll(r)
	defer Zero(plaintext)
	if err != nil {
		return nil, droperr.WithCause(droperr.ErrDecryptionFailed, err)
	}

	return SecureBytesFromSlice(plaintext), nil
}

// IsSealed reports whether data looks like age output, armored or binary.
func IsSealed(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte(armor.Header)) || bytes.HasPrefix(trimmed, ageHeader)
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
