package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecryptRejectsWrongPassphrase(t *testing.T) {
	enc, err := EncryptValue("sk-secret", "right horse battery")
	require.NoError(t, err)

	_, err = DecryptValue(enc, "wrong passphrase")
	assert.Error(t, err)
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"not-hex",
		"abcd",              // no separator
		"zz:zz",             // invalid hex
		"abcd:12",           // ciphertext shorter than a nonce
		strings.Repeat("ab", 16) + ":" + "00", // valid salt, truncated payload
	} {
		_, err := DecryptValue(input, "pass")
		assert.Error(t, err, "input %q", input)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	a, err := EncryptValue("same value", "pass")
	require.NoError(t, err)
	b, err := EncryptValue("same value", "pass")
	require.NoError(t, err)

	// Fresh salt and nonce per call.
	assert.NotEqual(t, a, b)

	plainA, err := DecryptValue(a, "pass")
	require.NoError(t, err)
	plainB, err := DecryptValue(b, "pass")
	require.NoError(t, err)
	assert.Equal(t, "same value", plainA)
	assert.Equal(t, plainA, plainB)
}
