package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

const abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestValidateMnemonic_Valid(t *testing.T) {
	t.Parallel()
	valid := []string{
		abandonMnemonic,
		"legal winner thank year wave sausage worth useful legal winner thank yellow",
		"zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong",
		"1. abandon\n2. abandon\n3. abandon\n4. abandon\n5. abandon\n6. abandon\n7. abandon\n8. abandon\n9. abandon\n10. abandon\n11. abandon\n12. about",
	}
	for _, m := range valid {
		require.NoError(t, ValidateMnemonic(m), m)
	}
}

//nolint:misspell // Intentional typos for testing
func TestValidateMnemonic_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		mnemonic   string
		suggestion string
	}{
		{"empty", "", ""},
		{"wrong word count", "abandon abandon abandon", ""},
		{"bad checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", "checksum"},
		{"typo", "abondon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "did you mean 'abandon'"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateMnemonic(tc.mnemonic)
			require.ErrorIs(t, err, droperr.ErrInvalidMnemonic)

			if tc.suggestion != "" {
				var de *droperr.DropError
				require.ErrorAs(t, err, &de)
				assert.Contains(t, de.Suggestion, tc.suggestion)
			}
		})
	}
}

func TestNormalizeMnemonicInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, input, want string
	}{
		{"uppercase", "ABANDON About", "abandon about"},
		{"commas", "abandon,abandon, about", "abandon abandon about"},
		{"bullets", "- abandon\n* about", "abandon about"},
		{"numbered", "1) abandon\n2: about", "abandon about"},
		{"tabs and newlines", "\tabandon\n\n about  ", "abandon about"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NormalizeMnemonicInput(tc.input))
		})
	}
}

func TestMnemonicToSeed_TestVector(t *testing.T) {
	t.Parallel()
	seed, err := MnemonicToSeed(abandonMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.Equal(t,
		"c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
		hex.EncodeToString(seed))
}

//nolint:misspell // Intentional typos for testing
func TestSuggestWord(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input, want string
	}{
		{"abondon", "abandon"},
		{"abadon", "abandon"},
		{"zooo", "zoo"},
		{"abandon", "abandon"},
		{"ABONDON", "abandon"},
		{"xyzqwerty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SuggestWord(tc.input))
		})
	}
}

//nolint:misspell // Intentional typos for testing
func TestDetectTypos(t *testing.T) {
	t.Parallel()
	typos := DetectTypos("abondon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abouut")
	require.Len(t, typos, 2)
	assert.Equal(t, 0, typos[0].Index)
	assert.Equal(t, "abandon", typos[0].Suggestion)
	assert.Equal(t, 1, typos[0].Distance)
	assert.Equal(t, 11, typos[1].Index)
	assert.Equal(t, "about", typos[1].Suggestion)

	assert.Empty(t, DetectTypos(abandonMnemonic))
	assert.Empty(t, DetectTypos(""))
}

func TestFormatTypoSuggestions(t *testing.T) {
	t.Parallel()
	out := FormatTypoSuggestions([]TypoInfo{
		{Index: 0, Word: "abondon", Suggestion: "abandon"},
		{Index: 4, Word: "qqqqqq"},
	})
	assert.Equal(t, "Word 1: 'abondon' - did you mean 'abandon'?\nWord 5: 'qqqqqq' is not a valid BIP39 word", out)
	assert.Empty(t, FormatTypoSuggestions(nil))
}
