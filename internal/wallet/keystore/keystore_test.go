package keystore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/wallet/keystore"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

const testWorkFactor = 10

const abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := keystore.Generate()
	require.NoError(t, err)
	return key
}

func TestStore_SavePlainAndLoad(t *testing.T) {
	t.Parallel()
	store := keystore.NewStore(t.TempDir())
	key := newKey(t)

	info, err := store.Save("default", key, keystore.SaveOptions{Source: keystore.SourceGenerate})
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey().String(), info.PublicKey)
	assert.False(t, info.Encrypted)

	secret, loaded, err := store.Load("default", "")
	require.NoError(t, err)
	defer secret.Destroy()

	assert.Equal(t, []byte(key), secret.Bytes())
	assert.Equal(t, keystore.SourceGenerate, loaded.Source)

	st, err := os.Stat(filepath.Join(store.Dir(), "default.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestStore_SaveSealedAndLoad(t *testing.T) {
	t.Parallel()
	store := keystore.NewStore(t.TempDir())
	key := newKey(t)

	_, err := store.Save("sealed", key, keystore.SaveOptions{Passphrase: "hunter2", WorkFactor: testWorkFactor})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "sealed.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "BEGIN AGE ENCRYPTED FILE")
	assert.Contains(t, string(raw), key.PublicKey().String())

	info, err := store.Info("sealed")
	require.NoError(t, err)
	assert.True(t, info.Encrypted)

	secret, _, err := store.Load("sealed", "hunter2")
	require.NoError(t, err)
	defer secret.Destroy()
	assert.Equal(t, []byte(key), secret.Bytes())

	_, _, err = store.Load("sealed", "wrong")
	require.ErrorIs(t, err, droperr.ErrDecryptionFailed)
}

func TestStore_SaveRefusesOverwrite(t *testing.T) {
	t.Parallel()
	store := keystore.NewStore(t.TempDir())

	_, err := store.Save("dup", newKey(t), keystore.SaveOptions{})
	require.NoError(t, err)

	_, err = store.Save("dup", newKey(t), keystore.SaveOptions{})
	require.ErrorIs(t, err, droperr.ErrKeystoreExists)
}

func TestStore_InvalidName(t *testing.T) {
	t.Parallel()
	store := keystore.NewStore(t.TempDir())

	for _, name := range []string{"", "../escape", "has space", strings.Repeat("a", 65)} {
		_, err := store.Save(name, newKey(t), keystore.SaveOptions{})
		require.ErrorIs(t, err, droperr.ErrInvalidInput, name)
	}
}

func TestStore_NotFound(t *testing.T) {
	t.Parallel()
	store := keystore.NewStore(t.TempDir())

	_, err := store.Info("missing")
	require.ErrorIs(t, err, droperr.ErrKeystoreNotFound)
	assert.False(t, store.Exists("missing"))
}

func TestStore_TamperedPublicKey(t *testing.T) {
	t.Parallel()
	store := keystore.NewStore(t.TempDir())
	_, err := store.Save("tampered", newKey(t), keystore.SaveOptions{})
	require.NoError(t, err)

	path := filepath.Join(store.Dir(), "tampered.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["public_key"] = newKey(t).PublicKey().String()
	raw, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, _, err = store.Load("tampered", "")
	require.ErrorIs(t, err, droperr.ErrInvalidKey)
}

func TestStore_List(t *testing.T) {
	t.Parallel()
	store := keystore.NewStore(t.TempDir())

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"zeta", "alpha"} {
		_, err := store.Save(name, newKey(t), keystore.SaveOptions{})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "broken.json"), []byte("{"), 0o600))

	list, err = store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)
}

func TestParseKeygenJSON(t *testing.T) {
	t.Parallel()
	key := newKey(t)

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)

	parsed, err := keystore.ParseKeygenJSON(data)
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	fromFile, err := keystore.ReadKeygenFile(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), fromFile.PublicKey())

	ints[40] ^= 1
	tampered, err := json.Marshal(ints)
	require.NoError(t, err)
	_, err = keystore.ParseKeygenJSON(tampered)
	require.ErrorIs(t, err, droperr.ErrInvalidKey)

	for _, bad := range []string{"", "[1,2,3]", "{}", "[256" + strings.Repeat(",0", 63) + "]"} {
		_, err := keystore.ParseKeygenJSON([]byte(bad))
		require.ErrorIs(t, err, droperr.ErrInvalidKey, bad)
	}
}

func TestParseBase58Secret(t *testing.T) {
	t.Parallel()
	key := newKey(t)

	full, err := keystore.ParseBase58Secret(base58.Encode(key))
	require.NoError(t, err)
	assert.Equal(t, key, full)

	seedOnly, err := keystore.ParseBase58Secret(base58.Encode(key[:32]))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), seedOnly.PublicKey())

	_, err = keystore.ParseBase58Secret("0OIl")
	require.ErrorIs(t, err, droperr.ErrInvalidKey)

	_, err = keystore.ParseBase58Secret(base58.Encode([]byte{1, 2, 3}))
	require.ErrorIs(t, err, droperr.ErrInvalidKey)
}

func TestFromMnemonic(t *testing.T) {
	t.Parallel()
	a, err := keystore.FromMnemonic(abandonMnemonic, "", "")
	require.NoError(t, err)
	b, err := keystore.FromMnemonic(abandonMnemonic, "", "")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = keystore.FromMnemonic("abandon", "", "")
	require.ErrorIs(t, err, droperr.ErrInvalidMnemonic)
}
