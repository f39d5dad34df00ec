// Package keystore stores Solana keypairs on disk, optionally sealed with a
// passphrase, and exposes them as a wallet.Provider.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/mrz1836/deaddrop/internal/fileutil"
	"github.com/mrz1836/deaddrop/internal/keycrypto"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

const (
	fileExtension   = ".json"
	filePermissions = 0o600
	formatVersion   = 1
)

// Import sources recorded in the keystore file.
const (
	SourceKeygen   = "keygen"
	SourceBase58   = "base58"
	SourceMnemonic = "mnemonic"
	SourceGenerate = "generated"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ErrInvalidName indicates the keystore name is invalid.
var ErrInvalidName = droperr.WithSuggestion(droperr.ErrInvalidInput, "keystore name must be 1-64 alphanumeric characters, underscores, or hyphens")

// Info is the public part of a keystore, readable without the passphrase.
type Info struct {
	Name      string    `json:"name"`
	PublicKey string    `json:"public_key"`
	Encrypted bool      `json:"encrypted"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// file is the on-disk layout. Secret holds the solana-keygen JSON array when
// plain, or a JSON string with the armored age ciphertext of it when sealed.
type file struct {
	Version   int             `json:"version"`
	PublicKey string          `json:"public_key"`
	Encrypted bool            `json:"encrypted"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
	Secret    json.RawMessage `json:"secret"`
}

// SaveOptions controls how a key is written.
type SaveOptions struct {
	// Passphrase seals the key when set.
	Passphrase string

	// WorkFactor overrides the scrypt cost. Zero uses keycrypto.DefaultWorkFactor.
	WorkFactor int

	// Source records where the key came from.
	Source string
}

// Store is a directory of keystore files.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// ValidateName checks if a keystore name is valid.
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// Save writes key under name. It never overwrites an existing keystore.
func (s *Store) Save(name string, key solana.PrivateKey, opts SaveOptions) (*Info, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := validateKeypair(key); err != nil {
		return nil, err
	}

	plain, err := encodeKeygen(key)
	if err != nil {
		return nil, err
	}
	defer keycrypto.Zero(plain)

	f := file{
		Version:   formatVersion,
		PublicKey: key.PublicKey().String(),
		Source:    opts.Source,
		CreatedAt: time.Now().UTC(),
		Secret:    plain,
	}

	if opts.Passphrase != "" {
		sealed, sealErr := keycrypto.SealWithWorkFactor(plain, opts.Passphrase, opts.WorkFactor)
		if sealErr != nil {
			return nil, sealErr
		}
		quoted, marshalErr := json.Marshal(string(sealed))
		if marshalErr != nil {
			return nil, marshalErr
		}
		f.Encrypted = true
		f.Secret = quoted
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding keystore: %w", err)
	}
	if !f.Encrypted {
		defer keycrypto.Zero(data)
	}

	if err := fileutil.WriteNew(s.path(name), data, filePermissions); err != nil {
		if errors.Is(err, fileutil.ErrExists) {
			return nil, droperr.WithDetails(droperr.ErrKeystoreExists, map[string]string{"name": name})
		}
		return nil, fmt.Errorf("writing keystore: %w", err)
	}

	return f.info(name), nil
}

// Info reads the public part of a keystore.
func (s *Store) Info(name string) (*Info, error) {
	f, err := s.read(name)
	if err != nil {
		return nil, err
	}
	return f.info(name), nil
}

// Load decrypts the keystore and returns the keypair in locked memory.
// passphrase is ignored for unencrypted keystores.
func (s *Store) Load(name, passphrase string) (*keycrypto.SecureBytes, *Info, error) {
	f, err := s.read(name)
	if err != nil {
		return nil, nil, err
	}

	var keygenJSON *keycrypto.SecureBytes
	if f.Encrypted {
		var armored string
		if err := json.Unmarshal(f.Secret, &armored); err != nil {
			return nil, nil, droperr.WithCause(droperr.ErrDecryptionFailed, err)
		}
		keygenJSON, err = keycrypto.Open([]byte(armored), passphrase)
		if err != nil {
			return nil, nil, err
		}
	} else {
		keygenJSON = keycrypto.SecureBytesFromSlice(f.Secret)
		keycrypto.Zero(f.Secret)
	}
	defer keygenJSON.Destroy()

	key, err := ParseKeygenJSON(keygenJSON.Bytes())
	if err != nil {
		return nil, nil, err
	}
	defer keycrypto.Zero(key)

	if key.PublicKey().String() != f.PublicKey {
		return nil, nil, droperr.WithDetails(droperr.ErrInvalidKey, map[string]string{
			"name":   name,
			"reason": "stored public key does not match the secret",
		})
	}

	return keycrypto.SecureBytesFromSlice(key), f.info(name), nil
}

// Exists reports whether a keystore called name exists.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// List returns every readable keystore, sorted by name.
func (s *Store) List() ([]*Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading keystore directory: %w", err)
	}

	var infos []*Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileExtension)
		if ValidateName(name) != nil {
			continue
		}
		info, err := s.Info(name)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *Store) read(name string) (*file, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, droperr.WithDetails(droperr.ErrKeystoreNotFound, map[string]string{"name": name})
		}
		return nil, fmt.Errorf("reading keystore: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, droperr.WithCause(droperr.ErrInvalidKey, err)
	}
	if f.Version != formatVersion {
		return nil, droperr.WithDetails(droperr.ErrInvalidKey, map[string]string{
			"name":    name,
			"version": fmt.Sprintf("%d", f.Version),
		})
	}

	return &f, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileExtension)
}

func (f *file) info(name string) *Info {
	return &Info{
		Name:      name,
		PublicKey: f.PublicKey,
		Encrypted: f.Encrypted,
		Source:    f.Source,
		CreatedAt: f.CreatedAt,
	}
}
