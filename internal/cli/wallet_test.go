package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/deaddrop/internal/output"
	"github.com/mrz1836/deaddrop/internal/wallet"
	"github.com/mrz1836/deaddrop/internal/wallet/keystore"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// importFlags mirrors the wallet import flags.
type importFlags struct {
	keygenFile string
	base58     bool
	mnemonic   bool
	generate   bool
	encrypt    bool
}

func withImportFlags(t *testing.T, f importFlags) {
	t.Helper()
	origFile, origB58, origMnemonic, origGenerate, origPath, origEncrypt := importKeygenFile, importBase58, importMnemonic, importGenerate, importPath, importEncrypt
	t.Cleanup(func() {
		importKeygenFile, importBase58, importMnemonic, importGenerate, importPath, importEncrypt = origFile, origB58, origMnemonic, origGenerate, origPath, origEncrypt
	})
	importKeygenFile = f.keygenFile
	importBase58 = f.base58
	importMnemonic = f.mnemonic
	importGenerate = f.generate
	importPath = wallet.SolanaDerivationPath
	importEncrypt = f.encrypt
}

// writeKeygenFile writes key as a solana-keygen JSON byte array.
func writeKeygenFile(t *testing.T, key solana.PrivateKey) string {
	t.Helper()
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func decodeWallet(t *testing.T, env *testEnv) WalletView {
	t.Helper()
	var view WalletView
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &view), env.stdout.String())
	return view
}

func TestWalletImport_KeygenFile(t *testing.T) {
	env := newTestEnv(t, output.FormatJSON)
	key, err := keystore.Generate()
	require.NoError(t, err)
	withPrompts(t, &promptScript{})
	withImportFlags(t, importFlags{keygenFile: writeKeygenFile(t, key)})

	require.NoError(t, runWalletImport(env.command(), []string{"main"}))

	view := decodeWallet(t, env)
	assert.Equal(t, "main", view.Name)
	assert.Equal(t, key.PublicKey().String(), view.Address)
	assert.Equal(t, keystore.SourceKeygen, view.Source)
	assert.False(t, view.Encrypted)
	assert.True(t, env.cc.Store.Exists("main"))
}

func TestWalletImport_Generate(t *testing.T) {
	env := newTestEnv(t, output.FormatText)
	withPrompts(t, &promptScript{})
	withImportFlags(t, importFlags{generate: true})

	require.NoError(t, runWalletImport(env.command(), []string{"burner"}))

	info, err := env.cc.Store.Info("burner")
	require.NoError(t, err)
	assert.Equal(t, keystore.SourceGenerate, info.Source)

	text := env.stdout.String()
	assert.Contains(t, text, "Keystore burner saved")
	assert.Contains(t, text, info.PublicKey)
	assert.Contains(t, text, "Back up the keystore file")
}

func TestWalletImport_Base58(t *testing.T) {
	env := newTestEnv(t, output.FormatJSON)
	key, err := keystore.Generate()
	require.NoError(t, err)
	script := withPrompts(t, &promptScript{password: []byte(key.String())})
	withImportFlags(t, importFlags{base58: true})

	require.NoError(t, runWalletImport(env.command(), []string{"hot"}))

	assert.Equal(t, 1, script.passwords)
	assert.Equal(t, key.PublicKey().String(), decodeWallet(t, env).Address)
}

func TestWalletImport_Mnemonic(t *testing.T) {
	env := newTestEnv(t, output.FormatJSON)
	withPrompts(t, &promptScript{lines: []string{"  ABANDON abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about "}})
	withImportFlags(t, importFlags{mnemonic: true})

	require.NoError(t, runWalletImport(env.command(), []string{"phrase"}))

	want, err := keystore.FromMnemonic(testMnemonic, "", wallet.SolanaDerivationPath)
	require.NoError(t, err)

	view := decodeWallet(t, env)
	assert.Equal(t, want.PublicKey().String(), view.Address)
	assert.Equal(t, keystore.SourceMnemonic, view.Source)
}

func TestWalletImport_MnemonicTypo(t *testing.T) {
	env := newTestEnv(t, output.FormatJSON)
	withPrompts(t, &promptScript{lines: []string{"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abou"}})
	withImportFlags(t, importFlags{mnemonic: true})

	err := runWalletImport(env.command(), []string{"phrase"})
	require.ErrorIs(t, err, droperr.ErrInvalidMnemonic)

	var de *droperr.DropError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Suggestion, "about")
	assert.False(t, env.cc.Store.Exists("phrase"))
}

func TestWalletImport_ExistingName(t *testing.T) {
	env := newTestEnv(t, output.FormatJSON)
	env.saveKey(t, "main", "")
	withPrompts(t, &promptScript{})
	withImportFlags(t, importFlags{generate: true})

	err := runWalletImport(env.command(), []string{"main"})
	require.ErrorIs(t, err, droperr.ErrKeystoreExists)
}

func TestWalletImport_InvalidName(t *testing.T) {
	env := newTestEnv(t, output.FormatJSON)
	withPrompts(t, &promptScript{})
	withImportFlags(t, importFlags{generate: true})

	require.Error(t, runWalletImport(env.command(), []string{"../escape"}))
}

func TestWalletImport_Encrypt(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		env := newTestEnv(t, output.FormatJSON)
		withPrompts(t, &promptScript{})
		answers := [][]byte{[]byte("first passphrase"), []byte("second passphrase")}
		promptPasswordFn = func(string) ([]byte, error) {
			next := answers[0]
			answers = answers[1:]
			return next, nil
		}
		withImportFlags(t, importFlags{generate: true, encrypt: true})

		err := runWalletImport(env.command(), []string{"sealed"})
		require.ErrorIs(t, err, droperr.ErrInvalidInput)
		assert.False(t, env.cc.Store.Exists("sealed"))
	})

	t.Run("sealed", func(t *testing.T) {
		env := newTestEnv(t, output.FormatJSON)
		script := withPrompts(t, &promptScript{password: []byte("correct horse")})
		withImportFlags(t, importFlags{generate: true, encrypt: true})

		require.NoError(t, runWalletImport(env.command(), []string{"sealed"}))
		assert.Equal(t, 2, script.passwords)
		assert.True(t, decodeWallet(t, env).Encrypted)

		_, _, err := env.cc.Store.Load("sealed", "wrong horse")
		require.ErrorIs(t, err, droperr.ErrDecryptionFailed)

		key, info, err := env.cc.Store.Load("sealed", "correct horse")
		require.NoError(t, err)
		defer key.Destroy()
		assert.True(t, info.Encrypted)
	})
}

func TestWalletShow(t *testing.T) {
	env := newTestEnv(t, output.FormatText)
	addr := env.saveKey(t, "default", "")
	withPrompts(t, &promptScript{})

	require.NoError(t, runWalletShow(env.command(), nil))
	text := env.stdout.String()
	assert.Contains(t, text, "default")
	assert.Contains(t, text, addr)
	assert.Contains(t, text, "SEALED")
}

func TestWalletShow_Missing(t *testing.T) {
	env := newTestEnv(t, output.FormatJSON)

	err := runWalletShow(env.command(), []string{"ghost"})
	require.ErrorIs(t, err, droperr.ErrKeystoreNotFound)

	var de *droperr.DropError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Suggestion, "deaddrop wallet list")
}

func TestWalletList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		env := newTestEnv(t, output.FormatText)
		require.NoError(t, runWalletList(env.command(), nil))
		assert.Contains(t, env.stdout.String(), "No keystores found.")
	})

	t.Run("empty json", func(t *testing.T) {
		env := newTestEnv(t, output.FormatJSON)
		require.NoError(t, runWalletList(env.command(), nil))
		assert.JSONEq(t, "[]", env.stdout.String())
	})

	t.Run("populated", func(t *testing.T) {
		env := newTestEnv(t, output.FormatText)
		defaultAddr := env.saveKey(t, "default", "")
		coldAddr := env.saveKey(t, "cold", "pass phrase")

		require.NoError(t, runWalletList(env.command(), nil))
		text := env.stdout.String()
		assert.Contains(t, text, "NAME")
		assert.Contains(t, text, "default *")
		assert.Contains(t, text, defaultAddr)
		assert.Contains(t, text, coldAddr)
	})
}
